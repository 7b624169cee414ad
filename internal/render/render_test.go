package render

import (
	"testing"
	"time"

	"github.com/zapflow/zapflow/internal/models"
)

func TestRenderBRL(t *testing.T) {
	r := NewRenderer("pt-BR", "BRL")

	got := r.Render("CPL: {{cpl}}", Values{"cpl": Money(12.5)})
	want := "CPL: R$ 12,50"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderThousandsSeparator(t *testing.T) {
	r := NewRenderer("pt-BR", "BRL")

	got := r.Render("{{leads}} leads", Values{"leads": Count(12345)})
	want := "12.345 leads"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderUnknownTokenPassesThrough(t *testing.T) {
	r := NewRenderer("pt-BR", "BRL")

	got := r.Render("Oi {{nome}}, CPL {{cpl}}", Values{"cpl": Money(8)})
	want := "Oi {{nome}}, CPL R$ 8,00"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer("pt-BR", "BRL")
	values := Values{
		"leads": Count(142),
		"cpl":   Money(12.5),
		"roas":  Ratio(3.4),
	}
	template := "Leads: {{leads}} | CPL: {{cpl}} | ROAS: {{roas}}"

	first := r.Render(template, values)
	for i := 0; i < 10; i++ {
		if got := r.Render(template, values); got != first {
			t.Fatalf("render not deterministic: %q vs %q", first, got)
		}
	}
}

func TestRenderKinds(t *testing.T) {
	r := NewRenderer("pt-BR", "BRL")

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"text", Text("Padaria"), "Padaria"},
		{"count", Count(7), "7"},
		{"money", Money(1234.5), "R$ 1.234,50"},
		{"percent", Percent(3.2), "3,20%"},
		{"ratio", Ratio(2.5), "2,50x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Render("{{v}}", Values{"v": tt.value})
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewRendererFallbacks(t *testing.T) {
	// Unknown locale falls back to pt-BR formatting
	r := NewRenderer("not-a-locale", "BRL")
	if got := r.Render("{{v}}", Values{"v": Money(12.5)}); got != "R$ 12,50" {
		t.Errorf("expected pt-BR fallback, got %q", got)
	}

	// Unknown currency uses the code as symbol
	r = NewRenderer("pt-BR", "XYZ")
	if got := r.Render("{{v}}", Values{"v": Money(10)}); got != "XYZ 10,00" {
		t.Errorf("expected code symbol, got %q", got)
	}
}

func TestReportValues(t *testing.T) {
	m := models.ClientMetrics{
		PeriodStart: time.Now(),
		Leads:       142,
		CPL:         12.5,
		AdSpend:     1775,
		Conversions: 9,
		ROAS:        3.4,
	}

	r := NewRenderer("pt-BR", "BRL")
	got := r.Render("{{leads}}/{{cpl}}/{{spend}}/{{conversions}}/{{roas}}", ReportValues(m))
	want := "142/R$ 12,50/R$ 1.775,00/9/3,40x"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
