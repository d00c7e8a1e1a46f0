package handlers

import (
	"encoding/xml"
	"net/http"
	"strings"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Sitemap — /sitemap.xml: все темы верхнего уровня и записи.
func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Sitemap(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	base := strings.TrimSuffix(h.siteURL(r), "/")

	set := urlSet{Xmlns: sitemapNS, URLs: make([]sitemapURL, 0, len(entries))}
	for _, e := range entries {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + e.Path})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

// siteURL — настроенный публичный адрес или схема+хост запроса.
func (h *Handlers) siteURL(r *http.Request) string {
	if h.opts.SiteURL != "" {
		return h.opts.SiteURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	return scheme + "://" + r.Host
}
