package configurator

// reconfigStore holds reconfiguration authentication-request frames
// until they can be matched. Unlike normal onboarding there is no
// usable hash key at insert time: correlation requires comparing each
// candidate against the Controller's configuration-signing key once it
// becomes known, so the store is a deliberate linear-scan slice, not a
// map. Expected cardinality is small.
type reconfigStore struct {
	frames [][]byte
}

// Add appends a frame to the store.
func (rs *reconfigStore) Add(frame []byte) {
	rs.frames = append(rs.frames, frame)
}

// TakeMatch removes and returns the first frame for which match
// reports true. Unmatched frames keep their positions.
func (rs *reconfigStore) TakeMatch(match func(frame []byte) bool) ([]byte, bool) {
	for i, f := range rs.frames {
		if match(f) {
			rs.frames = append(rs.frames[:i], rs.frames[i+1:]...)
			return f, true
		}
	}
	return nil, false
}

// Len returns the number of stored frames.
func (rs *reconfigStore) Len() int { return len(rs.frames) }
