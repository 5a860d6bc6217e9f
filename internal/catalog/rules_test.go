package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccepts(t *testing.T) {
	valid := Product{CategoryID: 1, Title: "title", Status: 1, Hit: 0}

	tests := []struct {
		name   string
		modify func(p *Product)
		want   bool
	}{
		{name: "valid", modify: func(p *Product) {}, want: true},
		{name: "upper category bound", modify: func(p *Product) { p.CategoryID = 15 }, want: true},
		{name: "category below range", modify: func(p *Product) { p.CategoryID = 0 }, want: false},
		{name: "category above range", modify: func(p *Product) { p.CategoryID = 16 }, want: false},
		{name: "negative status", modify: func(p *Product) { p.Status = -1 }, want: false},
		{name: "status above one", modify: func(p *Product) { p.Status = 2 }, want: false},
		{name: "negative hit", modify: func(p *Product) { p.Hit = -1 }, want: false},
		{name: "hit above one", modify: func(p *Product) { p.Hit = 2 }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)
			assert.Equal(t, tt.want, Accepts(p))
		})
	}
}

func TestDuplicateAlias(t *testing.T) {
	assert.Equal(t, "alias_title-0", DuplicateAlias("alias_title"))
}
