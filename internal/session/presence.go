package session

import "livedocs/internal/models"

// presence tracks the live participants of one document keyed by connection
// id. It is not safe for concurrent use; the owning Room serializes access.
type presence struct {
	byConn map[string]*models.Participant
	order  []string // join order, for stable broadcast payloads
}

func newPresence() *presence {
	return &presence{byConn: make(map[string]*models.Participant)}
}

func (p *presence) register(connID string, part *models.Participant) {
	if _, ok := p.byConn[connID]; !ok {
		p.order = append(p.order, connID)
	}
	p.byConn[connID] = part
}

func (p *presence) unregister(connID string) (*models.Participant, bool) {
	part, ok := p.byConn[connID]
	if !ok {
		return nil, false
	}
	delete(p.byConn, connID)
	for i, id := range p.order {
		if id == connID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return part, true
}

func (p *presence) get(connID string) (*models.Participant, bool) {
	part, ok := p.byConn[connID]
	return part, ok
}

func (p *presence) list() []models.Participant {
	out := make([]models.Participant, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.byConn[id])
	}
	return out
}

func (p *presence) isEmpty() bool { return len(p.byConn) == 0 }

func (p *presence) size() int { return len(p.byConn) }

func (p *presence) usedColors() map[string]bool {
	used := make(map[string]bool, len(p.byConn))
	for _, part := range p.byConn {
		used[part.Color] = true
	}
	return used
}
