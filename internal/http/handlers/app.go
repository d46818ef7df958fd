package handlers

import (
	"encoding/json"
	"net/http"

	"sportscast/internal/infra"
	"sportscast/internal/jobs"
)

type App struct {
	Jobs   *jobs.Repo
	Logger infra.Logger
}

func NewApp(repo *jobs.Repo, logger infra.Logger) *App {
	return &App{Jobs: repo, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}
