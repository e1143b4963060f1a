package suggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/smarttodo/internal/model"
)

func texts(list []model.Suggestion) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Text
	}
	return out
}

func TestExtractFiltersMetaAndShortLines(t *testing.T) {
	got := Extract("• Fix login bug\n• Here are some ideas\n• x", nil)
	assert.Equal(t, []model.Suggestion{{Text: "Fix login bug"}}, got)
}

func TestExtractBulletForms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "all three glyphs", text: "• Write docs\n- Ship release\n* Call support", want: []string{"Write docs", "Ship release", "Call support"}},
		{name: "indented bullet", text: "  \t- Review pull request", want: []string{"Review pull request"}},
		{name: "glyph without whitespace", text: "-Review pull request\n•Ship it now", want: []string{}},
		{name: "prose is ignored", text: "Sure! Let me think about this.", want: []string{}},
		{name: "trailing whitespace trimmed", text: "•   Plan the sprint   \r\n", want: []string{"Plan the sprint"}},
		{name: "denylist is case-insensitive", text: "- I SUGGEST these\n- Update the roadmap", want: []string{"Update the roadmap"}},
		{name: "empty text", text: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(Extract(tt.text, nil)))
		})
	}
}

func TestExtractLengthBounds(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		kept      bool
	}{
		{name: "four chars", candidate: "abcd", kept: false},
		{name: "five chars", candidate: "abcde", kept: true},
		{name: "two hundred chars", candidate: strings.Repeat("a", MaxLength), kept: true},
		{name: "two hundred one chars", candidate: strings.Repeat("a", MaxLength+1), kept: false},
		{name: "five multibyte runes", candidate: "ééééé", kept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract("- "+tt.candidate, nil)
			assert.Equal(t, tt.kept, len(got) == 1)
		})
	}
}

func TestExtractProjectMatching(t *testing.T) {
	projects := []Project{
		{ID: "p1", Name: "Website"},
		{ID: "p2", Name: "Mobile App"},
	}

	got := Extract("• Redesign the WEBSITE header\n• Fix mobile app crash\n• Book travel", projects)
	assert.Equal(t, []model.Suggestion{
		{Text: "Redesign the WEBSITE header", ProjectID: "p1"},
		{Text: "Fix mobile app crash", ProjectID: "p2"},
		{Text: "Book travel"},
	}, got)
}

func TestExtractFirstProjectWins(t *testing.T) {
	projects := []Project{
		{ID: "p1", Name: "web"},
		{ID: "p2", Name: "website"},
	}

	got := Extract("- Launch website", projects)
	assert.Equal(t, "p1", got[0].ProjectID)
}

func TestExtractSingleProjectDefault(t *testing.T) {
	got := Extract("- Book travel", []Project{{ID: "p1", Name: "Website"}})
	assert.Equal(t, []model.Suggestion{{Text: "Book travel", ProjectID: "p1"}}, got)
}
