// Package monitoring serves the routing decisions of a network over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sarchlab/nocroute/noc/networking/networkconnector"
	"github.com/sarchlab/nocroute/noc/networking/routing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"
)

// Monitor turns a network into a server that answers routing queries.
type Monitor struct {
	network    *networkconnector.Network
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
	portNumber int
	server     *http.Server
}

// NewMonitor creates a new Monitor.
func NewMonitor(network *networkconnector.Network) *Monitor {
	return &Monitor{
		network:  network,
		gatherer: prometheus.DefaultGatherer,
		logger:   zap.NewNop(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		m.logger.Warn("port number not allowed, using a random port",
			zap.Int("port", portNumber))

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithGatherer sets where the /metrics endpoint reads metrics from.
func (m *Monitor) WithGatherer(g prometheus.Gatherer) *Monitor {
	m.gatherer = g
	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(l *zap.Logger) *Monitor {
	m.logger = l
	return m
}

// Handler returns the HTTP handler of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/network", m.describeNetwork).Methods(http.MethodGet)
	r.HandleFunc("/api/route/{src:[0-9]+}/{dst:[0-9]+}", m.route).
		Methods(http.MethodGet)
	r.HandleFunc("/api/table/{router:[0-9]+}", m.table).
		Methods(http.MethodGet)
	r.HandleFunc("/api/params", m.params).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", errors.Wrap(err, "starting monitor")
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	m.server = &http.Server{Handler: m.Handler()}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor stopped", zap.Error(err))
		}
	}()

	m.logger.Info("monitoring network", zap.String("url", url))

	return url, nil
}

// Shutdown stops the server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

type networkRsp struct {
	Mode      string `json:"mode"`
	Routers   int    `json:"routers"`
	Endpoints int    `json:"endpoints"`
	Vnets     int    `json:"vnets"`
}

type hopRsp struct {
	Router           int    `json:"router"`
	Inport           int    `json:"inport"`
	InportDirection  string `json:"inport_direction"`
	Outport          int    `json:"outport"`
	OutportDirection string `json:"outport_direction"`
}

type routeRsp struct {
	Src   int      `json:"src"`
	Dst   int      `json:"dst"`
	Vnet  int      `json:"vnet"`
	Hops  []hopRsp `json:"hops"`
	Error string   `json:"error,omitempty"`
}

// LinkInfo describes a link of a routing table.
type LinkInfo struct {
	Link      int      `json:"link"`
	Direction string   `json:"direction"`
	Weight    int      `json:"weight"`
	Dests     []string `json:"dests"`
}

func (m *Monitor) describeNetwork(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, http.StatusOK, networkRsp{
		Mode:      m.network.Params().Mode.String(),
		Routers:   m.network.NumRouters(),
		Endpoints: m.network.NumEndpoints(),
		Vnets:     m.network.NumVnets(),
	})
}

func (m *Monitor) route(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	src, _ := strconv.Atoi(vars["src"])
	dst, _ := strconv.Atoi(vars["dst"])

	vnet := 0
	if v := r.URL.Query().Get("vnet"); v != "" {
		var err error

		vnet, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid vnet", http.StatusBadRequest)
			return
		}
	}

	if src >= m.network.NumEndpoints() || dst >= m.network.NumEndpoints() {
		http.Error(w, "endpoint not found", http.StatusNotFound)
		return
	}

	hops, err := m.network.Walk(src, dst, vnet)

	rsp := routeRsp{Src: src, Dst: dst, Vnet: vnet, Hops: []hopRsp{}}
	for _, h := range hops {
		rsp.Hops = append(rsp.Hops, hopRsp{
			Router:           h.Router,
			Inport:           h.Inport,
			InportDirection:  h.InportDirection.String(),
			Outport:          h.Outport,
			OutportDirection: h.OutportDirection.String(),
		})
	}

	status := http.StatusOK
	if err != nil {
		rsp.Error = err.Error()
		status = http.StatusUnprocessableEntity

		m.logger.Warn("route failed",
			zap.Int("src", src), zap.Int("dst", dst), zap.Error(err))
	}

	m.writeJSON(w, status, rsp)
}

func (m *Monitor) table(w http.ResponseWriter, r *http.Request) {
	router, _ := strconv.Atoi(mux.Vars(r)["router"])
	if router >= m.network.NumRouters() {
		http.Error(w, "router not found", http.StatusNotFound)
		return
	}

	m.writeJSON(w, http.StatusOK, TableOf(m.network.Unit(router)))
}

// TableOf lists the links of a routing unit and the destinations each link
// leads to, one entry per vnet.
func TableOf(u *routing.Unit) []LinkInfo {
	t := u.Table()
	links := make([]LinkInfo, 0, t.NumLinks())

	for link := 0; link < t.NumLinks(); link++ {
		l := LinkInfo{
			Link:      link,
			Direction: u.Directory().OutDirection(link).String(),
			Weight:    t.Weight(link),
			Dests:     make([]string, t.NumVnets()),
		}

		for vnet := range l.Dests {
			l.Dests[vnet] = "-"
			if s, ok := t.Entry(vnet, link).(fmt.Stringer); ok {
				l.Dests[vnet] = s.String()
			}
		}

		links = append(links, l)
	}

	return links
}

func (m *Monitor) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Error("failed to write response", zap.Error(err))
	}
}

func (m *Monitor) params(w http.ResponseWriter, _ *http.Request) {
	p := m.network.Params()

	buf := bytes.NewBuffer(nil)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&p)
	serializer.SetMaxDepth(1)

	if err := serializer.Serialize(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

type functionRsp struct {
	Name    string `json:"name"`
	Samples int64  `json:"samples"`
}

type profileRsp struct {
	DurationNanos int64         `json:"duration_ns"`
	Samples       int64         `json:"samples"`
	Functions     []functionRsp `json:"functions"`
}

const maxProfileSeconds = 30

// collectProfile samples the CPU for a number of seconds and reports the
// functions that were on CPU, busiest first.
func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	seconds := 1
	if v := r.URL.Query().Get("seconds"); v != "" {
		var err error

		seconds, err = strconv.Atoi(v)
		if err != nil || seconds <= 0 || seconds > maxProfileSeconds {
			http.Error(w, "invalid seconds", http.StatusBadRequest)
			return
		}
	}

	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	select {
	case <-time.After(time.Duration(seconds) * time.Second):
	case <-r.Context().Done():
	}

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, http.StatusOK, summarizeProfile(prof))
}

func summarizeProfile(prof *profile.Profile) profileRsp {
	rsp := profileRsp{
		DurationNanos: prof.DurationNanos,
		Functions:     []functionRsp{},
	}

	byName := make(map[string]int64)

	for _, s := range prof.Sample {
		if len(s.Value) == 0 {
			continue
		}

		rsp.Samples += s.Value[0]

		if len(s.Location) == 0 || len(s.Location[0].Line) == 0 {
			continue
		}

		fn := s.Location[0].Line[0].Function
		if fn != nil {
			byName[fn.Name] += s.Value[0]
		}
	}

	for name, n := range byName {
		rsp.Functions = append(rsp.Functions, functionRsp{Name: name, Samples: n})
	}

	sort.Slice(rsp.Functions, func(i, j int) bool {
		if rsp.Functions[i].Samples != rsp.Functions[j].Samples {
			return rsp.Functions[i].Samples > rsp.Functions[j].Samples
		}

		return rsp.Functions[i].Name < rsp.Functions[j].Name
	})

	return rsp
}
