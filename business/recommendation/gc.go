package recommendation

import (
	"sort"
	"time"
)

// busy reports whether the session is mid-cycle or has a live stream.
func (s *Session) busy() bool {
	return s.inFlight.Load() || s.state.Subscribers() > 0
}

// PruneIdle drops sessions unused for longer than the configured idle TTL
// and returns how many were removed. Busy sessions are kept.
func (s *RecommendationService) PruneIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, entry := range s.sessions {
		if now.Sub(entry.lastUsed) <= s.cfg.SessionIdleTTL || entry.session.busy() {
			continue
		}
		entry.session.Cancel()
		delete(s.sessions, userID)
		removed++
	}
	if removed > 0 {
		SessionsEvictedTotal.WithLabelValues("idle").Add(float64(removed))
	}
	return removed
}

// capSessionsLocked evicts least recently used idle sessions, other than
// keep, once the map exceeds MaxSessions. Must be called with s.mu held.
func (s *RecommendationService) capSessionsLocked(keep uint) {
	toDrop := len(s.sessions) - s.cfg.MaxSessions
	if toDrop <= 0 {
		return
	}

	type sessionInfo struct {
		userID   uint
		lastUsed time.Time
	}

	infos := make([]sessionInfo, 0, len(s.sessions))
	for userID, entry := range s.sessions {
		if userID == keep || entry.session.busy() {
			continue
		}
		infos = append(infos, sessionInfo{userID: userID, lastUsed: entry.lastUsed})
	}

	// oldest first; user id breaks ties
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].lastUsed.Equal(infos[j].lastUsed) {
			return infos[i].userID < infos[j].userID
		}
		return infos[i].lastUsed.Before(infos[j].lastUsed)
	})

	dropped := 0
	for i := 0; i < toDrop && i < len(infos); i++ {
		entry := s.sessions[infos[i].userID]
		entry.session.Cancel()
		delete(s.sessions, infos[i].userID)
		dropped++
	}
	if dropped > 0 {
		SessionsEvictedTotal.WithLabelValues("capacity").Add(float64(dropped))
	}
}
