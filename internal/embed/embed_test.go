package embed

import (
	"strings"
	"testing"

	"donation-widget/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject() models.Project {
	return models.Project{
		ID:          "7d1c",
		Name:        "Open Tools",
		Description: "Builds things",
		Recipients: []models.Recipient{
			{Address: "0x95222290DD7278Aa3Ddd389Cc1E1d165CC4BAfe5", ChainID: models.Ethereum, Share: 60},
			{Address: "0xab5801a7d398351b8be11c439e05c5b3259aec9b", ChainID: models.Base, Share: 40},
		},
		Theme: models.Theme{PrimaryColor: "#10B981", ButtonStyle: models.ButtonPill, Size: models.SizeLarge},
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("NPM")
	require.NoError(t, err)
	assert.Equal(t, KindPackage, got)

	_, err = ParseKind("widget")
	assert.ErrorIs(t, err, models.ErrUnknownEmbedKind)
}

func TestGenerate_Link(t *testing.T) {
	g := NewGenerator("", "")

	code, err := g.Generate(testProject(), KindLink)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(code, "https://youbuidl.xyz/donate?project="))
	decoded, err := DecodeProjectParam(strings.TrimPrefix(code, "https://youbuidl.xyz/donate?project="))
	require.NoError(t, err)
	assert.Equal(t, testProject(), decoded)
	assert.NotContains(t, code, " ")
	assert.NotContains(t, code, "+")
}

func TestGenerate_QR(t *testing.T) {
	g := NewGenerator("https://example.org/", "")

	code, err := g.Generate(testProject(), KindQR)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "https://example.org/qr?project=%7B%22id%22%3A%227d1c%22"))
}

func TestGenerate_Iframe(t *testing.T) {
	g := NewGenerator("", "")

	code, err := g.Generate(testProject(), KindIframe)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "<iframe\n  src=\"https://youbuidl.xyz/embed?project="))
	assert.Contains(t, code, `title="YouBuidl Donation Widget - Open Tools"`)
	assert.True(t, strings.HasSuffix(code, "></iframe>"))
}

func TestGenerate_ButtonTheme(t *testing.T) {
	g := NewGenerator("", "")

	tests := []struct {
		style    models.ButtonStyle
		size     models.WidgetSize
		radius   string
		fontSize string
	}{
		{style: models.ButtonPill, size: models.SizeLarge, radius: "border-radius:9999px", fontSize: "font-size:18px"},
		{style: models.ButtonRounded, size: models.SizeSmall, radius: "border-radius:8px", fontSize: "font-size:14px"},
		{style: models.ButtonDefault, size: models.SizeMedium, radius: "border-radius:4px", fontSize: "font-size:16px"},
		{style: "", size: "", radius: "border-radius:4px", fontSize: "font-size:16px"},
	}

	for _, tt := range tests {
		t.Run(string(tt.style)+"/"+string(tt.size), func(t *testing.T) {
			p := testProject()
			p.Theme.ButtonStyle = tt.style
			p.Theme.Size = tt.size

			code, err := g.Generate(p, KindButton)
			require.NoError(t, err)
			assert.Contains(t, code, tt.radius)
			assert.Contains(t, code, tt.fontSize)
			assert.Contains(t, code, "background:#10B981;")
			assert.Contains(t, code, "window.open('https://youbuidl.xyz/donate?project=")
			assert.Contains(t, code, "  Support Open Tools\n</button>")
		})
	}
}

func TestGenerate_EscapesMarkup(t *testing.T) {
	g := NewGenerator("", "")
	p := testProject()
	p.Name = `<script>"x"</script>`

	code, err := g.Generate(p, KindButton)
	require.NoError(t, err)
	assert.NotContains(t, code, "<script>")
	assert.Contains(t, code, "&lt;script&gt;")
}

func TestGenerate_Package(t *testing.T) {
	g := NewGenerator("", "@acme/donate")

	code, err := g.Generate(testProject(), KindPackage)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "npm install @acme/donate\n\nimport { DonationWidget } from '@acme/donate';"))
	assert.Contains(t, code, "const project = {\n  \"id\": \"7d1c\",\n  \"name\": \"Open Tools\",")
	assert.True(t, strings.HasSuffix(code, "<DonationWidget project={project} />"))
}

func TestGenerate_RequiresValidProjectForEveryKind(t *testing.T) {
	g := NewGenerator("", "")
	p := testProject()
	p.Recipients[1].Share = 39

	for _, k := range Kinds {
		code, err := g.Generate(p, k)
		assert.ErrorIs(t, err, models.ErrInvalidProject, string(k))
		assert.ErrorIs(t, err, models.ErrShareSumMismatch, string(k))
		assert.Empty(t, code)
	}

	_, err := g.Generate(testProject(), Kind("svg"))
	assert.ErrorIs(t, err, models.ErrUnknownEmbedKind)
}

func TestEncodeURIComponent(t *testing.T) {
	assert.Equal(t, "a%20b%26c%3Dd", EncodeURIComponent("a b&c=d"))
	assert.Equal(t, "it%27s%20%28ok%29%21%2A", EncodeURIComponent("it's (ok)!*"))
}

func TestShare(t *testing.T) {
	links := Share("Open Tools", "https://youbuidl.xyz/p/1", "0.5", "ETH")

	assert.Equal(t, "I just donated 0.5 ETH to Open Tools! Support public goods on YouBuidl 🌱", links.Message)
	assert.True(t, strings.HasPrefix(links.Twitter, "https://twitter.com/intent/tweet?text=I%20just%20donated%200.5%20ETH"))
	assert.True(t, strings.HasSuffix(links.Twitter, "&hashtags=FundPublicGoods,YouBuidl"))
	assert.Contains(t, links.Facebook, "u=https%3A%2F%2Fyoubuidl.xyz%2Fp%2F1")
	assert.Contains(t, links.LinkedIn, "title=Support%20Open%20Tools")
}
