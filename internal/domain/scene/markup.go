package scene

import (
	"maps"
	"strings"
)

// Side is the body side a node or chain belongs to.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideCenter Side = "center"
	SideFront  Side = "front"
	SideBack   Side = "back"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Sides lists every valid side in a stable order.
var Sides = []Side{SideLeft, SideRight, SideCenter, SideFront, SideBack, SideTop, SideBottom}

// ParseSide normalizes s into a Side. Unknown values return false.
func ParseSide(s string) (Side, bool) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Sides {
		if side == known {
			return side, true
		}
	}
	return "", false
}

// Opposite returns the mirrored side, or the side itself for center.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideFront:
		return SideBack
	case SideBack:
		return SideFront
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	default:
		return s
	}
}

// Markup is the per-node rigging metadata.
//
// Start and End hold the region name of the chain the node opens or closes.
// Extra is for studio-specific tags that have no typed field.
type Markup struct {
	Side     Side
	Region   string
	Start    string
	End      string
	Animated bool
	Twist    bool
	Null     bool
	Extra    map[string]any
}

// EffectiveSide returns the side, defaulting to center.
func (m Markup) EffectiveSide() Side {
	if m.Side == "" {
		return SideCenter
	}
	return m.Side
}

// EffectiveRegion returns Region, falling back to Start then End.
func (m Markup) EffectiveRegion() string {
	switch {
	case m.Region != "":
		return m.Region
	case m.Start != "":
		return m.Start
	default:
		return m.End
	}
}

// IsZero reports whether the markup carries no information.
func (m Markup) IsZero() bool {
	return m.Side == "" && m.Region == "" && m.Start == "" && m.End == "" &&
		!m.Animated && !m.Twist && !m.Null && len(m.Extra) == 0
}

func (m Markup) clone() Markup {
	if m.Extra == nil {
		return m
	}
	extra := make(map[string]any, len(m.Extra))
	maps.Copy(extra, m.Extra)
	m.Extra = extra
	return m
}
