package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/content"
	"github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/gallery"
	"github.com/reactiveshots/portfolio/pkg/mailer"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed content/about.md
var aboutMarkdown []byte

var pageNames = []string{"home", "about", "pricing", "gallery", "album", "contact", "notfound"}

type pages struct {
	tmpl  map[string]*template.Template
	about template.HTML
}

// blurRe matches the data URLs the content client produces.
var blurRe = regexp.MustCompile(`^data:image/[a-z+]+;base64,[A-Za-z0-9+/=_.\-]+$`)

var funcs = template.FuncMap{
	"px": func(v float64) string { return fmt.Sprintf("%.2fpx", v) },
	"blur": func(src string) template.CSS {
		return template.CSS(blurCSS(src))
	},
	"tileStyle": func(x, y, w, h float64, blur string) template.CSS {
		return template.CSS(fmt.Sprintf("left:%.2fpx;top:%.2fpx;width:%.2fpx;height:%.2fpx;%s", x, y, w, h, blurCSS(blur)))
	},
}

// blurCSS returns a background-image declaration for a validated blur
// placeholder, or nothing.
func blurCSS(src string) string {
	if !blurRe.MatchString(src) {
		return ""
	}
	return "background-image:url('" + src + "');background-size:cover"
}

func loadPages() (*pages, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, err
	}

	p := &pages{tmpl: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.tmpl[name] = t
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Typographer))
	var buf bytes.Buffer
	if err := md.Convert(aboutMarkdown, &buf); err != nil {
		return nil, fmt.Errorf("render about: %w", err)
	}
	p.about = template.HTML(buf.String())
	return p, nil
}

type navItem struct {
	Href, Label string
	Active      bool
}

// page holds what every template needs.
type page struct {
	Title       string
	Description string
	Nav         []navItem
	Year        int
}

func newPage(r *http.Request, title, description string) page {
	links := []navItem{
		{Href: "/gallery", Label: "Gallery"},
		{Href: "/pricing", Label: "Pricing"},
		{Href: "/about", Label: "About"},
		{Href: "/lets-talk", Label: "Let's talk"},
	}
	for i, l := range links {
		links[i].Active = r.URL.Path == l.Href || strings.HasPrefix(r.URL.Path, l.Href+"/")
	}
	return page{Title: title, Description: description, Nav: links, Year: time.Now().Year()}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.tmpl[name].ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("render page", "page", name, "err", err, "request_id", RequestIDFrom(r.Context()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// categoryCard pairs a category with its currently featured photo.
type categoryCard struct {
	catalog.Category
	Photo *content.Photo
}

func (s *Server) cards(slugs []string) []categoryCard {
	snap := s.opts.Featured.Snapshot()
	cards := make([]categoryCard, 0, len(slugs))
	for _, slug := range slugs {
		c, ok := catalog.Lookup(slug)
		if !ok {
			continue
		}
		card := categoryCard{Category: c}
		if fc, ok := snap.Lookup(slug); ok {
			if p, ok := fc.CurrentPhoto(); ok {
				card.Photo = &p
			}
		}
		cards = append(cards, card)
	}
	return cards
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home", struct {
		page
		Categories []categoryCard
	}{
		page:       newPage(r, "", "Photography and videography for events, portraits, cars and real estate."),
		Categories: s.cards(catalog.Slugs()),
	})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about", struct {
		page
		About template.HTML
	}{
		page:  newPage(r, "About", "About Reactive Shots."),
		About: s.pages.about,
	})
}

type pricingSection struct {
	categoryCard
	Packages []catalog.Package
}

func (s *Server) pricingSections(slugs []string) []pricingSection {
	var sections []pricingSection
	for _, card := range s.cards(slugs) {
		pkgs := catalog.Pricing(card.Slug)
		if pkgs == nil {
			continue
		}
		sections = append(sections, pricingSection{categoryCard: card, Packages: pkgs})
	}
	return sections
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	s.renderPricing(w, r, "Pricing", catalog.PricedSlugs())
}

func (s *Server) handlePricingCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "category")
	c, ok := catalog.Lookup(slug)
	if !ok || catalog.Pricing(slug) == nil {
		http.Redirect(w, r, "/pricing", http.StatusFound)
		return
	}
	s.renderPricing(w, r, c.Title()+" Pricing", []string{slug})
}

func (s *Server) renderPricing(w http.ResponseWriter, r *http.Request, title string, slugs []string) {
	s.render(w, r, http.StatusOK, "pricing", struct {
		page
		Sections []pricingSection
	}{
		page:     newPage(r, title, "Packages and pricing."),
		Sections: s.pricingSections(slugs),
	})
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "gallery", struct {
		page
		Categories []categoryCard
	}{
		page:       newPage(r, "Gallery", "Browse our work by category."),
		Categories: s.cards(catalog.Slugs()),
	})
}

// handleAlbumPage renders a category gallery. With ?width=N the masonry
// layout is computed server-side; otherwise the page measures its
// container and fetches the layout from the API.
func (s *Server) handleAlbumPage(w http.ResponseWriter, r *http.Request) {
	c, ok := catalog.Lookup(chi.URLParam(r, "category"))
	if !ok {
		http.Redirect(w, r, "/gallery", http.StatusFound)
		return
	}

	data := struct {
		page
		Category catalog.Category
		Result   *gallery.Result
		Error    string
	}{
		page:     newPage(r, c.Title(), c.Description),
		Category: c,
	}

	status := http.StatusOK
	if r.URL.Query().Has("width") {
		width, err := parseWidth(r)
		if err == nil {
			data.Result, err = s.opts.Layouts.Layout(r.Context(), c.Slug, width, false)
		}
		if err != nil {
			status = statusFor(err)
			data.Error = errors.UserMessage(err)
			if status >= 500 {
				s.logger.Error("album page", "category", c.Slug, "err", err)
				data.Error = "Photos are unavailable right now."
			}
		}
	}
	s.render(w, r, status, "album", data)
}

type contactPage struct {
	page
	Inquiry   mailer.Inquiry
	Sent      bool
	ReceiptID string
	Error     string
}

func (s *Server) handleContactPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "contact", contactPage{
		page: newPage(r, "Let's talk", "Get in touch about your shoot."),
	})
}

// handleContactForm is the no-JavaScript path of the contact form.
func (s *Server) handleContactForm(w http.ResponseWriter, r *http.Request) {
	data := contactPage{page: newPage(r, "Let's talk", "Get in touch about your shoot.")}

	q, err := readInquiry(w, r)
	if err == nil {
		data.Inquiry = q.Normalized()
		var receipt mailer.Receipt
		receipt, err = s.submit(r, q)
		if err == nil {
			data.Sent = true
			data.ReceiptID = receipt.ID
		}
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		retryAfter(w, err)
		data.Error = errors.UserMessage(err)
		if status >= 500 {
			s.logger.Error("contact form", "err", err, "request_id", RequestIDFrom(r.Context()))
			data.Error = "We couldn't send your message. Please try again later."
		}
	}
	s.render(w, r, status, "contact", data)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:     errorDetail{Code: errors.ErrCodeNotFound, Message: "no such endpoint"},
			RequestID: RequestIDFrom(r.Context()),
		})
		return
	}
	s.render(w, r, http.StatusNotFound, "notfound", newPage(r, "Not found", ""))
}
