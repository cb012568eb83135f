// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func init() {
	now = func() time.Time { return time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC) }
}

func samplePaper() *types.Paper {
	return &types.Paper{
		ID:              "2301.07041v2",
		Title:           "Graph Neural Networks at Scale",
		Authors:         []string{"Alice Mary Smith", "Bob Jones", "Carol White"},
		Abstract:        "We study graph neural networks.",
		Published:       time.Date(2023, 1, 17, 18, 58, 28, 0, time.UTC),
		PrimaryCategory: "cs.LG",
		AbsURL:          "https://arxiv.org/abs/2301.07041v2",
	}
}

func TestFormat_BibTeX(t *testing.T) {
	p := samplePaper()
	p.DOI = "10.1000/xyz123"
	p.JournalRef = "J. Graph Learn. 4"
	p.Abstract = strings.Repeat("a", 600)

	got, err := Format(p, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "@article{230107041v2,\n"), got)
	assert.Contains(t, got, "  author = {Alice Mary Smith and Bob Jones and Carol White},")
	assert.Contains(t, got, "  year = {2023},")
	assert.Contains(t, got, "  month = {1},")
	assert.Contains(t, got, "  eprint = {2301.07041v2},")
	assert.Contains(t, got, "  archivePrefix = {arXiv},")
	assert.Contains(t, got, "  primaryClass = {cs.LG},")
	assert.Contains(t, got, "  doi = {10.1000/xyz123},")
	assert.Contains(t, got, "  journal = {J. Graph Learn. 4},")
	assert.Contains(t, got, "  url = {https://arxiv.org/abs/2301.07041v2},")
	assert.Contains(t, got, "  abstract = {"+strings.Repeat("a", 500)+"...},")
	assert.True(t, strings.HasSuffix(got, "\n}"))
}

func TestFormat_APA(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*types.Paper)
		wantPrefix string
		wantSuffix string
	}{
		{
			name:       "abs url when no doi",
			mutate:     func(*types.Paper) {},
			wantPrefix: "Smith, A. M., et al. (2023).",
			wantSuffix: "https://arxiv.org/abs/2301.07041v2",
		},
		{
			name:       "doi url preferred",
			mutate:     func(p *types.Paper) { p.DOI = "10.1000/xyz123" },
			wantPrefix: "Smith,",
			wantSuffix: "https://doi.org/10.1000/xyz123",
		},
		{
			name:       "two authors",
			mutate:     func(p *types.Paper) { p.Authors = p.Authors[:2] },
			wantPrefix: "Smith, A. M., & Jones, B. (2023).",
			wantSuffix: "https://arxiv.org/abs/2301.07041v2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePaper()
			tt.mutate(p)
			got, err := Format(p, "APA")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, tt.wantPrefix), got)
			assert.True(t, strings.HasSuffix(got, tt.wantSuffix), got)
			assert.Contains(t, got, "arXiv preprint arXiv:2301.07041.")
		})
	}
}

func TestFormat_OtherStyles(t *testing.T) {
	p := samplePaper()
	tests := []struct {
		style string
		want  string
	}{
		{"mla", `Smith, Alice Mary, et al. "Graph Neural Networks at Scale." arXiv, 2023. https://arxiv.org/abs/2301.07041v2. Accessed 9 May. 2024.`},
		{"chicago", `Smith, Alice Mary, et al. "Graph Neural Networks at Scale." January 2023. https://arxiv.org/abs/2301.07041v2.`},
		{"ieee", `A. M. Smith et al., "Graph Neural Networks at Scale," arXiv preprint arXiv:2301.07041, 2023.`},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			got, err := Format(p, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_NoAuthors(t *testing.T) {
	p := samplePaper()
	p.Authors = nil
	p.Published = time.Time{}

	got, err := Format(p, "bibtex")
	require.NoError(t, err)
	assert.Contains(t, got, "author = {Unknown Author}")
	assert.Contains(t, got, "year = {n.d.}")

	got, err = Format(p, "ieee")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Unknown Author, "), got)
}

func TestFormat_UnknownStyle(t *testing.T) {
	_, err := Format(samplePaper(), "harvard")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindNotFound))
	assert.Contains(t, err.Error(), "bibtex")
}

func TestFormat_CSL(t *testing.T) {
	got, err := Format(samplePaper(), "csl")
	require.NoError(t, err)

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal([]byte(got), &items))
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "230107041v2", item.ID)
	assert.Equal(t, "article", item.Type)
	assert.Equal(t, "arXiv", item.Publisher)
	require.Len(t, item.Author, 3)
	assert.Equal(t, CSLName{Family: "Smith", Given: "Alice Mary"}, item.Author[0])
	require.NotNil(t, item.Issued)
	assert.Equal(t, [][]int{{2023, 1, 17}}, item.Issued.DateParts)
}

func TestToCSLItem_Journal(t *testing.T) {
	p := samplePaper()
	p.JournalRef = "Nature 1, 2"
	p.Authors = []string{"Plato"}

	item := ToCSLItem(p)
	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want article-journal", item.Type)
	}
	if item.ContainerTitle != "Nature 1, 2" {
		t.Errorf("ContainerTitle = %q", item.ContainerTitle)
	}
	if len(item.Author) != 1 || item.Author[0].Literal != "Plato" {
		t.Errorf("Author = %+v, want literal Plato", item.Author)
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "A."},
		{"Alice Mary", "A. M."},
		{"Mary-Ann", "M.-A."},
		{"J.", "J."},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, initials(tt.in), tt.in)
	}
}
