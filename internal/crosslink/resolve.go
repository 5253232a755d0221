package crosslink

import "go.uber.org/zap"

type statusPair struct{ prev, cur Status }

// overlapTable maps the statuses of two overlapping neighbours to their
// resolved statuses. A candidate blocked by an accepted link stays blocked
// and leaves its other neighbour's status alone.
var overlapTable = map[statusPair]statusPair{
	{Proposed, Proposed}:                   {BlockedAmbiguous, BlockedAmbiguous},
	{BlockedAmbiguous, Proposed}:           {BlockedAmbiguous, BlockedAmbiguous},
	{Proposed, BlockedAmbiguous}:           {BlockedAmbiguous, BlockedAmbiguous},
	{BlockedAmbiguous, BlockedAmbiguous}:   {BlockedAmbiguous, BlockedAmbiguous},
	{Accepted, Proposed}:                   {Accepted, BlockedByAccepted},
	{Proposed, Accepted}:                   {BlockedByAccepted, Accepted},
	{Accepted, Accepted}:                   {Accepted, Accepted},
	{Accepted, BlockedAmbiguous}:           {Accepted, BlockedByAccepted},
	{BlockedAmbiguous, Accepted}:           {BlockedByAccepted, Accepted},
	{BlockedByAccepted, Proposed}:          {BlockedByAccepted, Proposed},
	{Proposed, BlockedByAccepted}:          {Proposed, BlockedByAccepted},
	{BlockedByAccepted, BlockedByAccepted}: {BlockedByAccepted, BlockedByAccepted},
	{Accepted, BlockedByAccepted}:          {Accepted, BlockedByAccepted},
	{BlockedByAccepted, Accepted}:          {BlockedByAccepted, Accepted},
	{BlockedAmbiguous, BlockedByAccepted}:  {BlockedAmbiguous, BlockedByAccepted},
	{BlockedByAccepted, BlockedAmbiguous}:  {BlockedByAccepted, BlockedAmbiguous},
}

// Resolve recomputes candidate statuses from adjacency. Statuses other than
// Accepted are first reset to Proposed, then each candidate is compared with
// the previous non-excluded one; overlapping pairs are rewritten through the
// overlap table. The list order is never changed.
func Resolve(cands []Candidate, logger *zap.Logger) {
	for i := range cands {
		c := &cands[i]
		c.Blocking = false
		if c.Status != Accepted && !c.Excluded {
			c.Status = Proposed
		}
	}

	prev := -1
	for i := range cands {
		cur := &cands[i]
		if cur.Excluded {
			continue
		}
		if prev >= 0 && cur.SelStart < cands[prev].SelEnd {
			p := &cands[prev]
			if p.Status == Accepted && cur.Status == Accepted && logger != nil {
				logger.Warn("overlapping accepted links",
					zap.String("prev_target", p.Target),
					zap.Int("prev_start", p.SelStart),
					zap.Int("prev_end", p.SelEnd),
					zap.String("target", cur.Target),
					zap.Int("start", cur.SelStart),
					zap.Int("end", cur.SelEnd))
			}
			if next, ok := overlapTable[statusPair{p.Status, cur.Status}]; ok {
				p.Status, cur.Status = next.prev, next.cur
			}
			if p.Status == Accepted && cur.Status == BlockedByAccepted {
				p.Blocking = true
			}
			if cur.Status == Accepted && p.Status == BlockedByAccepted {
				cur.Blocking = true
			}
		}
		prev = i
	}
}
