package component

import (
	"sync"
	"time"

	"task-notifier/entity"
)

// Popup tracks visibility of one login summary. An open cycle starts when Open
// makes it visible and ends at the first Close, which fires onClose once with
// the bundle on screen at that moment.
type Popup struct {
	mu      sync.Mutex
	visible bool
	bundle  *entity.NotificationBundle
	onClose func(b *entity.NotificationBundle)
}

func NewPopup(onClose func(b *entity.NotificationBundle)) *Popup {
	return &Popup{onClose: onClose}
}

// Open hands b to the popup and reports whether it is visible afterwards.
// The popup is visible exactly when b has items. A nil or empty bundle hides
// an open popup without firing onClose, and repeating Open on a visible popup
// only swaps the bundle.
func (p *Popup) Open(b *entity.NotificationBundle) bool {
	visible, _ := p.open(b)
	return visible
}

// open also reports whether this call started a new open cycle.
func (p *Popup) open(b *entity.NotificationBundle) (visible, started bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b == nil {
		p.visible = false
		p.bundle = nil
		return false, false
	}
	p.bundle = b
	switch hasItems := ShouldOpen(b); {
	case hasItems && !p.visible:
		p.visible = true
		started = true
	case !hasItems:
		p.visible = false
	}
	return p.visible, started
}

// Close ends the current open cycle. It returns false, and does nothing, when
// the popup is not visible.
func (p *Popup) Close() bool {
	p.mu.Lock()
	if !p.visible {
		p.mu.Unlock()
		return false
	}
	p.visible = false
	onClose, shown := p.onClose, p.bundle
	p.mu.Unlock()

	if onClose != nil {
		onClose(shown)
	}
	return true
}

func (p *Popup) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// View renders the current bundle, or nil when the popup is hidden.
func (p *Popup) View(now time.Time) *SummaryView {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.visible {
		return nil
	}
	return Render(p.bundle, now)
}

// PopupRegistry keeps one Popup per user.
type PopupRegistry struct {
	popups  sync.Map
	onClose func(userID int, b *entity.NotificationBundle)
}

// NewPopupRegistry builds a registry whose popups report closes through
// onClose, together with the bundle that was on screen.
func NewPopupRegistry(onClose func(userID int, b *entity.NotificationBundle)) *PopupRegistry {
	return &PopupRegistry{onClose: onClose}
}

func (r *PopupRegistry) get(userID int) *Popup {
	if v, ok := r.popups.Load(userID); ok {
		return v.(*Popup)
	}
	p := NewPopup(func(b *entity.NotificationBundle) {
		if r.onClose != nil {
			r.onClose(userID, b)
		}
	})
	v, _ := r.popups.LoadOrStore(userID, p)
	return v.(*Popup)
}

// Open passes b to the popup of userID. started is true when the call opened
// a new cycle.
func (r *PopupRegistry) Open(userID int, b *entity.NotificationBundle) (visible, started bool) {
	return r.get(userID).open(b)
}

func (r *PopupRegistry) Close(userID int) bool {
	v, ok := r.popups.Load(userID)
	if !ok {
		return false
	}
	return v.(*Popup).Close()
}

func (r *PopupRegistry) Visible(userID int) bool {
	v, ok := r.popups.Load(userID)
	if !ok {
		return false
	}
	return v.(*Popup).Visible()
}
