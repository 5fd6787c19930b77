// Package config loads the description of a network and its routing
// settings from YAML files, .env files, and the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sarchlab/nocroute/noc/networking/networkconnector"
	"github.com/sarchlab/nocroute/noc/networking/routing"
	"gopkg.in/yaml.v3"
)

// The topology kinds.
const (
	KindMesh    = "mesh"
	KindRing    = "ring"
	KindFatTree = "fattree"
	KindCustom  = "custom"
)

// Config describes a network.
type Config struct {
	Topology Topology `yaml:"topology"`
	Routing  Routing  `yaml:"routing"`
}

// Topology describes how routers and endpoints are connected.
type Topology struct {
	Kind string `yaml:"kind"`

	// Mesh
	Rows int `yaml:"rows,omitempty"`
	Cols int `yaml:"cols,omitempty"`

	// Ring and custom
	Routers int `yaml:"routers,omitempty"`

	// Fat-tree
	Degree int `yaml:"degree,omitempty"`
	Pods   int `yaml:"pods,omitempty"`

	// Custom. Endpoints lists the router that each endpoint attaches to.
	Endpoints []int  `yaml:"endpoints,omitempty"`
	Links     []Link `yaml:"links,omitempty"`
}

// Link is a unidirectional link of a custom topology.
type Link struct {
	Src     int    `yaml:"src"`
	Dst     int    `yaml:"dst"`
	Outport string `yaml:"outport"`
	Inport  string `yaml:"inport"`
	Weight  int    `yaml:"weight"`
	Vnets   []int  `yaml:"vnets,omitempty"`
}

// Routing holds the routing settings.
type Routing struct {
	Algorithm      string `yaml:"algorithm"`
	NumVnets       int    `yaml:"num_vnets"`
	OrderedVnets   []int  `yaml:"ordered_vnets,omitempty"`
	Seed           uint64 `yaml:"seed"`
	CandidateCache int    `yaml:"candidate_cache,omitempty"`
}

// Default returns a 4x4 mesh routed with XY.
func Default() Config {
	return Config{
		Topology: Topology{Kind: KindMesh, Rows: 4, Cols: 4},
		Routing: Routing{
			Algorithm: routing.DimensionOrder.String(),
			NumVnets:  1,
		},
	}
}

// Parse reads a YAML document on top of the default configuration.
func Parse(data []byte) (Config, error) {
	c := Default()

	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "parsing configuration YAML")
	}

	return c, nil
}

// Load reads the .env file in the working directory if there is one, then
// the YAML file at path, and finally applies NOCROUTE_* environment
// variables. An empty path skips the YAML file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "loading .env")
	}

	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "reading configuration")
		}

		c, err = Parse(data)
		if err != nil {
			return Config{}, err
		}
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// ApplyEnv overrides fields with the NOCROUTE_* variables that lookup
// finds.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strVars := map[string]*string{
		"NOCROUTE_TOPOLOGY":  &c.Topology.Kind,
		"NOCROUTE_ALGORITHM": &c.Routing.Algorithm,
	}

	for name, field := range strVars {
		if v, ok := lookup(name); ok {
			*field = v
		}
	}

	intVars := map[string]*int{
		"NOCROUTE_ROWS":            &c.Topology.Rows,
		"NOCROUTE_COLS":            &c.Topology.Cols,
		"NOCROUTE_ROUTERS":         &c.Topology.Routers,
		"NOCROUTE_DEGREE":          &c.Topology.Degree,
		"NOCROUTE_PODS":            &c.Topology.Pods,
		"NOCROUTE_NUM_VNETS":       &c.Routing.NumVnets,
		"NOCROUTE_CANDIDATE_CACHE": &c.Routing.CandidateCache,
	}

	for name, field := range intVars {
		v, ok := lookup(name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "parsing %s", name)
		}

		*field = n
	}

	if v, ok := lookup("NOCROUTE_SEED"); ok {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return errors.Wrap(err, "parsing NOCROUTE_SEED")
		}

		c.Routing.Seed = seed
	}

	if v, ok := lookup("NOCROUTE_ORDERED_VNETS"); ok {
		vnets, err := parseIntList(v)
		if err != nil {
			return errors.Wrap(err, "parsing NOCROUTE_ORDERED_VNETS")
		}

		c.Routing.OrderedVnets = vnets
	}

	return nil
}

func parseIntList(s string) ([]int, error) {
	var list []int

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}

		list = append(list, n)
	}

	return list, nil
}

// Params converts the routing settings into routing parameters.
func (c Config) Params() (routing.Params, error) {
	mode, err := routing.ParseMode(c.Routing.Algorithm)
	if err != nil {
		return routing.Params{}, err
	}

	p := routing.Params{
		Mode:         mode,
		OrderedVnets: c.Routing.OrderedVnets,
		Seed:         c.Routing.Seed,
	}

	switch c.Topology.Kind {
	case KindMesh:
		p.NumRows = c.Topology.Rows
		p.NumCols = c.Topology.Cols
	case KindFatTree:
		p.TreeDegree = c.Topology.Degree
		p.NumPods = c.Topology.Pods
	}

	return p, nil
}

// Validate checks that the topology is complete and that the routing
// algorithm can run on it.
func (c Config) Validate() error {
	t := c.Topology

	switch t.Kind {
	case KindMesh:
		if t.Rows <= 0 || t.Cols <= 0 {
			return errors.Errorf("mesh requires positive rows and cols, got %dx%d",
				t.Rows, t.Cols)
		}
	case KindRing:
		if t.Routers < 2 {
			return errors.Errorf("ring requires at least 2 routers, got %d",
				t.Routers)
		}
	case KindFatTree:
		if t.Degree <= 0 || t.Degree%2 != 0 {
			return errors.Errorf("fat-tree degree must be even and positive, got %d",
				t.Degree)
		}
	case KindCustom:
		if err := t.validateCustom(); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown topology kind %q", t.Kind)
	}

	if c.Routing.NumVnets <= 0 {
		return errors.Errorf("num_vnets must be positive, got %d",
			c.Routing.NumVnets)
	}

	p, err := c.Params()
	if err != nil {
		return err
	}

	switch p.Mode {
	case routing.DimensionOrder:
		if t.Kind != KindMesh {
			return errors.Errorf("xy routing requires a mesh, got %s", t.Kind)
		}
	case routing.HierarchicalTree, routing.HierarchicalTreeAdaptive:
		if t.Kind != KindFatTree {
			return errors.Errorf("%s routing requires a fat-tree, got %s",
				p.Mode, t.Kind)
		}
	}

	return errors.Wrap(p.Validate(), "invalid routing parameters")
}

func (t Topology) validateCustom() error {
	if t.Routers <= 0 {
		return errors.New("custom topology requires routers")
	}

	for i, r := range t.Endpoints {
		if r < 0 || r >= t.Routers {
			return errors.Errorf("endpoint %d attaches to unknown router %d", i, r)
		}
	}

	for i, l := range t.Links {
		if l.Src < 0 || l.Src >= t.Routers || l.Dst < 0 || l.Dst >= t.Routers {
			return errors.Errorf("link %d connects unknown routers %d and %d",
				i, l.Src, l.Dst)
		}

		if l.Weight <= 0 {
			return errors.Errorf("link %d has non-positive weight %d", i, l.Weight)
		}

		if l.Outport == "" || l.Inport == "" {
			return errors.Errorf("link %d requires an outport and an inport", i)
		}
	}

	return nil
}

// Build adds the topology to the connector and establishes the routes. The
// connector carries the logger, hooks, and metrics of the caller.
func (c Config) Build(
	conn networkconnector.Connector,
) (*networkconnector.Network, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p, err := c.Params()
	if err != nil {
		return nil, err
	}

	conn = conn.
		WithParams(p).
		WithNumVnets(c.Routing.NumVnets).
		WithCandidateCacheSize(c.Routing.CandidateCache)

	t := c.Topology
	switch t.Kind {
	case KindMesh:
		conn.AddMesh(t.Rows, t.Cols)
	case KindRing:
		conn.AddRing(t.Routers)
	case KindFatTree:
		conn.AddFatTree(t.Degree, t.Pods)
	case KindCustom:
		for i := 0; i < t.Routers; i++ {
			conn.AddRouter()
		}

		for _, r := range t.Endpoints {
			conn.AddEndpoint(r)
		}

		for _, l := range t.Links {
			conn.AddLink(networkconnector.LinkSpec{
				Src:            l.Src,
				Dst:            l.Dst,
				SrcOutport:     l.Outport,
				DstInport:      l.Inport,
				Weight:         l.Weight,
				SupportedVnets: l.Vnets,
			})
		}
	}

	return conn.EstablishRoute()
}
