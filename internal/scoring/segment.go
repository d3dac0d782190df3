package scoring

// Segment is the lead-priority bucket handed to sales. String values match the
// leads.segment column.
type Segment string

const (
	SegmentHot     Segment = "hot"
	SegmentWarm    Segment = "warm"
	SegmentCold    Segment = "cold"
	SegmentNurture Segment = "nurture"
)

// Valid reports whether s is one of the four segments.
func (s Segment) Valid() bool {
	switch s {
	case SegmentHot, SegmentWarm, SegmentCold, SegmentNurture:
		return true
	}
	return false
}

// Urgency tags that move a lead up the table. Any other tag counts as none.
const (
	UrgencyHot  = "hot"
	UrgencyWarm = "warm"
)

// Classify combines the readiness percentage with the seller's urgency.
//
//	              urgency hot   urgency warm   other
//	pct >= 75     hot           hot            warm
//	50 <= pct     warm          cold           nurture
//	pct < 50      cold          nurture        nurture
func Classify(pct int, urgency string) Segment {
	switch {
	case pct >= 75:
		if urgency == UrgencyHot || urgency == UrgencyWarm {
			return SegmentHot
		}
		return SegmentWarm
	case pct >= 50:
		switch urgency {
		case UrgencyHot:
			return SegmentWarm
		case UrgencyWarm:
			return SegmentCold
		}
		return SegmentNurture
	default:
		if urgency == UrgencyHot {
			return SegmentCold
		}
		return SegmentNurture
	}
}
