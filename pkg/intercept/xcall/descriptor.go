package xcall

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Signature 描述被调用方法：声明类型、方法名与参数类型。
type Signature struct {
	// Type 声明方法的类型（或服务）名。
	Type string
	// Method 方法名。
	Method string
	// Params 参数类型名，仅用于展示。
	Params []string
}

// String 返回 Type.Method(p1,p2) 形式的签名。
func (s Signature) String() string {
	var b strings.Builder
	if s.Type != "" {
		b.WriteString(s.Type)
		b.WriteByte('.')
	}
	b.WriteString(s.Method)
	b.WriteByte('(')
	b.WriteString(strings.Join(s.Params, ","))
	b.WriteByte(')')
	return b.String()
}

// FullMethod 返回不含参数的 Type.Method。
func (s Signature) FullMethod() string {
	if s.Type == "" {
		return s.Method
	}
	return s.Type + "." + s.Method
}

// Descriptor 是一次调用的不可变描述。
//
// 由调用点创建，生命周期覆盖整个调用（包括异步续体），创建后只读。
// 并发安全。
type Descriptor struct {
	ctx       context.Context
	target    string
	signature Signature
	args      []any
	start     time.Time

	idOnce sync.Once
	id     string
}

// NewDescriptor 创建调用描述。nil ctx 被替换为 context.Background()。
//
// args 与 sig.Params 会被复制，调用方后续修改不影响描述。
func NewDescriptor(ctx context.Context, target string, sig Signature, args ...any) *Descriptor {
	if ctx == nil {
		ctx = context.Background()
	}
	sig.Params = slices.Clone(sig.Params)
	return &Descriptor{
		ctx:       ctx,
		target:    target,
		signature: sig,
		args:      slices.Clone(args),
		start:     time.Now(),
	}
}

// Context 返回调用方的 context。
func (d *Descriptor) Context() context.Context {
	return d.ctx
}

// Target 返回目标标识。
func (d *Descriptor) Target() string {
	return d.target
}

// Signature 返回调用签名。
func (d *Descriptor) Signature() Signature {
	sig := d.signature
	sig.Params = slices.Clone(sig.Params)
	return sig
}

// Method 返回 Type.Method，便于作为指标/日志标签。
func (d *Descriptor) Method() string {
	return d.signature.FullMethod()
}

// NumArgs 返回参数个数。
func (d *Descriptor) NumArgs() int {
	return len(d.args)
}

// Arg 返回第 i 个参数，越界返回 nil。
func (d *Descriptor) Arg(i int) any {
	if i < 0 || i >= len(d.args) {
		return nil
	}
	return d.args[i]
}

// Args 返回参数副本。
func (d *Descriptor) Args() []any {
	return slices.Clone(d.args)
}

// Start 返回调用开始时间（含单调时钟读数）。
func (d *Descriptor) Start() time.Time {
	return d.start
}

// Elapsed 返回自开始以来的耗时。
func (d *Descriptor) Elapsed() time.Duration {
	return time.Since(d.start)
}

// ID 返回调用唯一标识（UUID）。
//
// 首次访问时生成，此后不变；未被任何观察者使用时不产生开销。
func (d *Descriptor) ID() string {
	d.idOnce.Do(func() {
		d.id = uuid.NewString()
	})
	return d.id
}

// String 返回 target/Type.Method(params) 形式的可读描述。
func (d *Descriptor) String() string {
	if d.target == "" {
		return d.signature.String()
	}
	return d.target + "/" + d.signature.String()
}
