package state

import "github.com/ray-remotestate/storefront/models"

// orderSet is an insertion-ordered map of orders keyed by order id. Writing an
// existing key replaces the record in place.
type orderSet struct {
	keys []string
	byID map[string]models.Order
}

func newOrderSet() *orderSet {
	return &orderSet{byID: make(map[string]models.Order)}
}

func (s *orderSet) get(id string) (models.Order, bool) {
	o, ok := s.byID[id]
	return o, ok
}

func (s *orderSet) put(o models.Order) {
	if _, ok := s.byID[o.OrderID]; !ok {
		s.keys = append(s.keys, o.OrderID)
	}
	s.byID[o.OrderID] = o
}

func (s *orderSet) merge(orders []models.Order) {
	for _, o := range orders {
		if o.OrderID == "" {
			continue
		}
		s.put(o)
	}
}

func (s *orderSet) values() []models.Order {
	out := make([]models.Order, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.byID[k])
	}
	return out
}

func (s *orderSet) clear() {
	s.keys = nil
	s.byID = make(map[string]models.Order)
}
