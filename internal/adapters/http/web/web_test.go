package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{ViewerPage, LoginPage, AdminPage, "head", "toast"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTemplates_Render(t *testing.T) {
	tests := []struct {
		name string
		page string
		data map[string]any
		want []string
	}{
		{
			name: "viewer escapes verse text",
			page: ViewerPage,
			data: map[string]any{
				"Verse":      map[string]any{"Zh": "<b>起初</b>", "RefZh": "创世记 1:1", "En": "In the beginning", "RefEn": "Genesis 1:1"},
				"ShareTitle": "每日经文",
				"NextURL":    "/?exclude=q-1",
			},
			want: []string{"&lt;b&gt;起初&lt;/b&gt;", "— 创世记 1:1", "<title>每日经文</title>"},
		},
		{
			name: "viewer placeholder",
			page: ViewerPage,
			data: map[string]any{"Placeholder": "暂无经文", "NextURL": "/"},
			want: []string{"暂无经文"},
		},
		{
			name: "login",
			page: LoginPage,
			data: map[string]any{"Title": "经文管理"},
			want: []string{`action="/admin/login"`, "<h2 style=\"margin-top:0\">经文管理</h2>"},
		},
		{
			name: "admin dashboard",
			page: AdminPage,
			data: map[string]any{
				"Title":   "经文管理",
				"Heading": "概览",
				"Page":    "dashboard",
				"Nav":     []map[string]string{{"Page": "dashboard", "Label": "概览"}},
				"Stats":   map[string]any{"Total": 7, "Date": "2024年3月5日星期二"},
			},
			want: []string{`<strong id="total">7</strong>`, "2024年3月5日星期二", `href="/admin?page=dashboard"`},
		},
	}

	tmpl := MustTemplates()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, tt.page, tt.data))

			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
