package chart

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// Renderer memoises rendered charts by their inputs. A nil cache disables
// memoisation.
type Renderer struct {
	cache *cache.LRUCache[[]byte]
}

func NewRenderer(c *cache.LRUCache[[]byte]) *Renderer {
	return &Renderer{cache: c}
}

func (r *Renderer) Bar(income, expense decimal.Decimal, caption string) ([]byte, error) {
	render := func() ([]byte, error) { return RenderBarChart(income, expense, caption) }
	if r == nil || r.cache == nil {
		return render()
	}
	return r.cache.GetOrCompute(key("bar", income.String(), expense.String(), caption), render)
}

func (r *Renderer) Pie(totals []core.CategoryTotal, title string) ([]byte, error) {
	render := func() ([]byte, error) { return RenderPieChart(totals, title) }
	if r == nil || r.cache == nil {
		return render()
	}
	parts := make([]string, 0, 2+2*len(totals))
	parts = append(parts, "pie", title)
	for _, t := range totals {
		parts = append(parts, t.Name, t.Amount.String())
	}
	return r.cache.GetOrCompute(key(parts...), render)
}

// key digests the parts with a separator that cannot appear in UTF-8 text.
func key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		io.WriteString(h, p)
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}
