package stablecontainer

import (
	"fmt"
	"strings"
)

// DebugString renders a human-readable view of c, with absent fields
// shown as *omitted* rather than their zero encoding — supplementing
// the codec with the debug rendering remerkleable's __repr__ provides,
// since a raw hex dump of an absent field is indistinguishable from a
// present all-zero one.
func (c *StableContainer) DebugString() string {
	var b strings.Builder
	b.WriteString("StableContainer[")
	b.WriteString(fmt.Sprintf("%d", c.schema.Capacity()))
	b.WriteString("]{")
	for i, f := range c.schema.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString("=")
		v, ok, err := c.Get(f.Name)
		switch {
		case err != nil:
			fmt.Fprintf(&b, "*error: %v*", err)
		case !ok:
			b.WriteString("*omitted*")
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	b.WriteString("}")
	return b.String()
}

// DebugString renders a human-readable view of p, with absent optional
// fields shown as *omitted*.
func (p *Profile) DebugString() string {
	var b strings.Builder
	b.WriteString("Profile{")
	for i, f := range p.schema.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString("=")
		v, ok, err := p.Get(f.Name)
		switch {
		case err != nil:
			fmt.Fprintf(&b, "*error: %v*", err)
		case !ok:
			b.WriteString("*omitted*")
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	b.WriteString("}")
	return b.String()
}
