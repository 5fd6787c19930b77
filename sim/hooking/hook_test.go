package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingHook struct {
	count int
}

func (h *countingHook) Func(ctx HookCtx) {
	h.count++
}

type namedItem struct{}

func (namedItem) String() string {
	return "named item"
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  *HookPos
	)

	BeforeEach(func() {
		base = &HookableBase{}
		pos = &HookPos{Name: "Pos"}
	})

	It("should invoke all hooks", func() {
		h1 := &countingHook{}
		h2 := &countingHook{}
		base.AcceptHook(h1)
		base.AcceptHook(h2)

		base.InvokeHook(HookCtx{Pos: pos})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(h1.count).To(Equal(1))
		Expect(h2.count).To(Equal(1))
	})

	It("should reject a hook registered twice", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})

	It("should accept hook functions", func() {
		called := 0
		base.AcceptHook(HookFunc(func(HookCtx) { called++ }))
		base.AcceptHook(HookFunc(func(HookCtx) { called++ }))

		base.InvokeHook(HookCtx{Pos: pos})

		Expect(called).To(Equal(2))
	})
})

var _ = Describe("LogHook", func() {
	It("should log at debug level", func() {
		core, logs := observer.New(zapcore.DebugLevel)
		h := NewLogHook(zap.New(core))

		h.Func(HookCtx{
			Pos:    &HookPos{Name: "OutportComputed"},
			Item:   namedItem{},
			Detail: 3,
		})

		Expect(logs.Len()).To(Equal(1))
		entry := logs.All()[0]
		Expect(entry.Message).To(Equal("OutportComputed"))
		Expect(entry.ContextMap()).To(HaveKeyWithValue("item", "named item"))
	})

	It("should not log when debug is disabled", func() {
		core, logs := observer.New(zapcore.InfoLevel)
		h := NewLogHook(zap.New(core))

		h.Func(HookCtx{Pos: &HookPos{Name: "OutportComputed"}})

		Expect(logs.Len()).To(Equal(0))
	})
})
