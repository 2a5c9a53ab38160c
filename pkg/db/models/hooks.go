package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rows created by services carry no id; postgres fills it via
// gen_random_uuid() but the sqlite test driver does not, so the hooks assign
// one client-side when missing.

func (u *User) BeforeCreate(*gorm.DB) error           { return assignID(&u.ID) }
func (p *Product) BeforeCreate(*gorm.DB) error        { return assignID(&p.ID) }
func (b *Bundle) BeforeCreate(*gorm.DB) error         { return assignID(&b.ID) }
func (c *CartLine) BeforeCreate(*gorm.DB) error       { return assignID(&c.ID) }
func (o *Order) BeforeCreate(*gorm.DB) error          { return assignID(&o.ID) }
func (i *OrderItem) BeforeCreate(*gorm.DB) error      { return assignID(&i.ID) }
func (r *Rental) BeforeCreate(*gorm.DB) error         { return assignID(&r.ID) }
func (h *HostingRequest) BeforeCreate(*gorm.DB) error { return assignID(&h.ID) }
func (i *Invoice) BeforeCreate(*gorm.DB) error        { return assignID(&i.ID) }

func assignID(id *uuid.UUID) error {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return nil
}
