package fakeapi

import "time"

type seedProduct struct {
	name, description, category, weave string
	price, discounted                  float64
	stock                              int
	occasions, collections             []string
}

var seedProducts = []seedProduct{
	{"Kanjivaram Silk Saree", "Temple border in pure zari", "silk", "Kanjivaram", 18500, 15999, 4, []string{"wedding", "festive"}, []string{"heritage-weaves"}},
	{"Banarasi Katan Saree", "Handwoven katan silk with meenakari buttis", "silk", "Banarasi", 22000, 0, 2, []string{"wedding"}, []string{"heritage-weaves"}},
	{"Chanderi Cotton Saree", "Lightweight chanderi with silver motifs", "cotton", "Chanderi", 4200, 3800, 10, []string{"everyday", "festive"}, []string{"new-arrivals"}},
	{"Linen Jamdani Saree", "Handloom linen with jamdani weaving", "linen", "Jamdani", 6800, 0, 6, []string{"everyday"}, []string{"new-arrivals"}},
	{"Paithani Silk Saree", "Peacock pallu woven in Yeola", "silk", "Paithani", 26500, 24500, 1, []string{"wedding", "festive"}, []string{"heritage-weaves", "new-arrivals"}},
}

// seed fills the catalog with a small set of taxonomy terms and products
func (s *store) seed() {
	terms := map[string][]string{
		resourceCategories:  {"silk", "cotton", "linen"},
		resourceOccasions:   {"wedding", "festive", "everyday"},
		resourceCollections: {"heritage weaves", "new arrivals"},
	}
	ids := make(map[string]map[string]string)
	for resource, names := range terms {
		ids[resource] = make(map[string]string)
		for _, name := range names {
			t, err := s.createTerm(resource, termInput{Name: &name})
			if err != nil {
				continue
			}
			ids[resource][t.Slug] = t.ID
		}
	}

	lookup := func(resource string, slugs []string) []string {
		out := make([]string, 0, len(slugs))
		for _, slug := range slugs {
			out = append(out, ids[resource][slug])
		}
		return out
	}

	base := s.now().Add(-time.Duration(len(seedProducts)) * time.Hour)
	for i, sp := range seedProducts {
		in := productInput{
			Name:        sp.name,
			Description: sp.description,
			Price:       sp.price,
			Category:    ids[resourceCategories][sp.category],
			WeaveType:   sp.weave,
			Stock:       sp.stock,
			Occasions:   lookup(resourceOccasions, sp.occasions),
			Collections: lookup(resourceCollections, sp.collections),
		}
		if sp.discounted > 0 {
			d := sp.discounted
			in.DiscountedPrice = &d
		}
		p, err := s.createProduct(in)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.products[p.ID].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		s.mu.Unlock()
	}
}
