package round

import "lucky-server/pkg/participant"

// AllCommitted returns true if every present participant is committed
// A nil participant is absent and counts as committed, so a lone participant can start a round
func AllCommitted(participants ...*participant.Participant) bool {
	for _, p := range participants {
		if p != nil && !p.Committed() {
			return false
		}
	}

	return true
}
