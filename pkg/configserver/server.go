// Package configserver serves a small HTTP editor for the pipeline
// configuration file. GET /config.json returns the current config,
// POST /save-config merges the editable fields and writes it back.
package configserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"whatsup/pkg/config"
)

// editableConfig is the subset of fields the editor may change.
type editableConfig struct {
	Subreddits  *[]string           `json:"subreddits"`
	Scraping    *config.Scraping    `json:"scraping"`
	UserProfile *config.UserProfile `json:"user_profile"`
	Model       *string             `json:"default_model"`
}

// Server edits the config file at a fixed path.
type Server struct {
	configPath string
	mux        *http.ServeMux
}

func New(configPath string) *Server {
	s := &Server{configPath: configPath, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /", s.handleIndex)
	s.mux.HandleFunc("GET /config.json", s.handleGet)
	s.mux.HandleFunc("POST /save-config", s.handleSave)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("configserver: listening on %s", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var edit editableConfig
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if edit.Subreddits != nil {
		cfg.Subreddits = *edit.Subreddits
	}
	if edit.Scraping != nil {
		cfg.Scraping = *edit.Scraping
	}
	if edit.UserProfile != nil {
		cfg.UserProfile = *edit.UserProfile
	}
	if edit.Model != nil {
		cfg.Classifier.Model = *edit.Model
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := cfg.Save(s.configPath); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Configuration saved successfully"})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>whatsup config</title></head>
<body>
<h1>whatsup configuration</h1>
<p>GET <a href="/config.json">/config.json</a> for the current configuration.</p>
<p>POST /save-config with the editable fields (subreddits, scraping, user_profile, default_model) to update it.</p>
</body>
</html>
`
