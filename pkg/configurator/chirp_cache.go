package configurator

// chirpCacheCap bounds the number of buffered frames. An Enrollee that
// never completes correlation must not grow the cache forever; once
// the bound is hit the oldest entry is dropped first.
const chirpCacheCap = 64

// chirpCache buffers authentication-request frames against the chirp
// hash that correlates them, covering the window where one side of the
// bridge runs ahead of the other. Entries are insertion ordered for
// FIFO drain; re-inserting a hash replaces the earlier frame, since a
// stale cached request is no longer useful.
//
// No internal locking: the owning engine is single-threaded.
type chirpCache struct {
	order  []string
	frames map[string][]byte
}

func newChirpCache() *chirpCache {
	return &chirpCache{frames: make(map[string][]byte)}
}

// Put stores frame under hash, last writer wins. A replaced entry
// keeps its new insertion position at the tail. At capacity the
// oldest entries are evicted.
func (cc *chirpCache) Put(hash, frame []byte) {
	key := string(hash)
	if _, ok := cc.frames[key]; ok {
		for i, k := range cc.order {
			if k == key {
				cc.order = append(cc.order[:i], cc.order[i+1:]...)
				break
			}
		}
	}
	cc.order = append(cc.order, key)
	cc.frames[key] = frame
	for len(cc.frames) > chirpCacheCap {
		cc.Pop()
	}
}

// Take removes and returns the frame cached under hash.
func (cc *chirpCache) Take(hash []byte) ([]byte, bool) {
	key := string(hash)
	frame, ok := cc.frames[key]
	if !ok {
		return nil, false
	}
	delete(cc.frames, key)
	for i, k := range cc.order {
		if k == key {
			cc.order = append(cc.order[:i], cc.order[i+1:]...)
			break
		}
	}
	return frame, true
}

// Pop removes and returns the oldest entry.
func (cc *chirpCache) Pop() (hash, frame []byte, ok bool) {
	if len(cc.order) == 0 {
		return nil, nil, false
	}
	key := cc.order[0]
	cc.order = cc.order[1:]
	frame = cc.frames[key]
	delete(cc.frames, key)
	return []byte(key), frame, true
}

// Len returns the number of cached frames.
func (cc *chirpCache) Len() int { return len(cc.frames) }
