package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/language"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "login", "register", "snippet_form"}

// PageHandler renders the HTML pages. Each page is parsed together with
// base.html once at startup; base pulls in the page's "content" block.
//
// Page routes sit behind the navigation middleware, so handlers that need a
// signed-in user can rely on the identity being present.
type PageHandler struct {
	pages    map[string]*template.Template
	snippets SnippetActions
	github   bool
	logger   *slog.Logger
}

func NewPageHandler(snippets SnippetActions, githubEnabled bool, logger *slog.Logger) (*PageHandler, error) {
	funcs := template.FuncMap{
		"languageLabel": func(value string) string {
			if l, ok := language.Lookup(value); ok {
				return l.Label
			}
			return value
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{
		pages:    pages,
		snippets: snippets,
		github:   githubEnabled,
		logger:   logger,
	}, nil
}

type pageData struct {
	Title     string
	User      model.Identity
	Flash     string
	Query     string
	Redirect  string
	GitHub    bool
	Snippets  []model.Snippet
	Languages []language.Language
	Form      formView
}

// formView is the editor state echoed back into the form.
type formView struct {
	ID       string
	Title    string
	Content  string
	Language string
	ErrField string
	Err      string
}

func (h *PageHandler) render(w http.ResponseWriter, status int, page string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.pages[page].ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// HandleHome lists the caller's snippets, narrowed by ?q=.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	query := r.URL.Query().Get("q")

	snippets, err := h.snippets.List(r.Context(), caller)
	if err != nil {
		h.renderError(w, caller, err)
		return
	}

	h.render(w, http.StatusOK, "home", pageData{
		Title:    "Your snippets",
		User:     caller,
		Flash:    r.URL.Query().Get("error"),
		Query:    query,
		Snippets: search.Filter(snippets, query),
	})
}

// HandleLoginPage renders the sign-in form.
//
// HTTP: GET /auth/login
func (h *PageHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login", pageData{
		Title:    "Sign in",
		Flash:    r.URL.Query().Get("error"),
		Redirect: SafeRedirect(r.URL.Query().Get("redirect")),
		GitHub:   h.github,
	})
}

// HandleRegisterPage renders the sign-up form.
//
// HTTP: GET /auth/register
func (h *PageHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register", pageData{
		Title:    "Register",
		Flash:    r.URL.Query().Get("error"),
		Redirect: SafeRedirect(r.URL.Query().Get("redirect")),
	})
}

// HandleNewSnippet renders an empty editor in create mode.
//
// HTTP: GET /snippets/new
func (h *PageHandler) HandleNewSnippet(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, callerFrom(r), formView{Language: language.Default().Value})
}

// HandleEditSnippet renders the editor prefilled with one of the caller's
// snippets.
//
// HTTP: GET /snippets/{id}/edit
func (h *PageHandler) HandleEditSnippet(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	id := chi.URLParam(r, "id")

	snippets, err := h.snippets.List(r.Context(), caller)
	if err != nil {
		h.renderError(w, caller, err)
		return
	}
	for _, s := range snippets {
		if s.ID == id {
			h.renderForm(w, http.StatusOK, caller, formView{
				ID:       s.ID,
				Title:    s.Title,
				Content:  s.Content,
				Language: s.LanguageOrEmpty(),
			})
			return
		}
	}
	h.renderError(w, caller, apperror.NotFound("snippet", id))
}

// HandleSaveSnippet creates or updates from the editor form. Validation
// failures re-render the form with the input preserved.
//
// HTTP: POST /snippets
func (h *PageHandler) HandleSaveSnippet(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if err := r.ParseForm(); err != nil {
		h.renderError(w, caller, apperror.ValidationFailed("", "invalid form"))
		return
	}

	form := formView{
		ID:       r.PostForm.Get("id"),
		Title:    r.PostForm.Get("title"),
		Content:  r.PostForm.Get("content"),
		Language: r.PostForm.Get("language"),
	}
	input := model.SnippetInput{
		Title:    form.Title,
		Content:  form.Content,
		Language: model.StringPtr(form.Language),
	}

	var err error
	if form.ID != "" {
		_, err = h.snippets.Update(r.Context(), caller, form.ID, input)
	} else {
		_, err = h.snippets.Create(r.Context(), caller, input)
	}

	var appErr *apperror.AppError
	if errors.Is(err, apperror.ErrValidation) && errors.As(err, &appErr) {
		form.ErrField, form.Err = appErr.Field, appErr.Message
		h.renderForm(w, http.StatusBadRequest, caller, form)
		return
	}
	if err != nil {
		h.renderError(w, caller, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDeleteSnippet deletes from the list page's form button.
//
// HTTP: POST /snippets/{id}/delete
func (h *PageHandler) HandleDeleteSnippet(w http.ResponseWriter, r *http.Request) {
	if err := h.snippets.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		redirectWithError(w, r, "/", "", apperror.Message(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) renderForm(w http.ResponseWriter, status int, caller model.Identity, form formView) {
	title := "New snippet"
	if form.ID != "" {
		title = "Edit snippet"
	}
	data := pageData{
		Title:     title,
		User:      caller,
		Languages: language.All(),
		Form:      form,
	}
	if form.Err != "" && form.ErrField != "title" && form.ErrField != "content" {
		data.Flash = form.Err
	}
	h.render(w, status, "snippet_form", data)
}

// renderError shows err on the home page layout with the matching status.
func (h *PageHandler) renderError(w http.ResponseWriter, caller model.Identity, err error) {
	status, _ := StatusFor(err)
	msg := "Something went wrong"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("page request failed", slog.String("error", err.Error()))
	}
	h.render(w, status, "home", pageData{Title: "Error", User: caller, Flash: msg})
}
