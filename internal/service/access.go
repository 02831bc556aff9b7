package service

// AccessPolicy decides who may use the bot and whose notes are mirrored to
// the task board. Administrators are always allowed.
type AccessPolicy struct {
	allowed map[int64]struct{}
	admins  map[int64]struct{}
	contact string
}

func NewAccessPolicy(allowed, admins []int64, contact string) *AccessPolicy {
	p := &AccessPolicy{
		allowed: make(map[int64]struct{}, len(allowed)+len(admins)),
		admins:  make(map[int64]struct{}, len(admins)),
		contact: contact,
	}
	for _, id := range allowed {
		p.allowed[id] = struct{}{}
	}
	for _, id := range admins {
		p.admins[id] = struct{}{}
		p.allowed[id] = struct{}{}
	}
	return p
}

// Admit reports whether userID is on the allow-list.
func (p *AccessPolicy) Admit(userID int64) bool {
	_, ok := p.allowed[userID]
	return ok
}

// IsPrivileged reports whether userID is an administrator.
func (p *AccessPolicy) IsPrivileged(userID int64) bool {
	_, ok := p.admins[userID]
	return ok
}

// Contact is the Telegram username people should write to for access, without "@".
func (p *AccessPolicy) Contact() string {
	return p.contact
}

func (p *AccessPolicy) Admins() []int64 {
	out := make([]int64, 0, len(p.admins))
	for id := range p.admins {
		out = append(out, id)
	}
	return out
}
