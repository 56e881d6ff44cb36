package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"learnlog/internal/domain"
)

type userPayload struct {
	Username string `json:"username"`
}

type stagePayload struct {
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
}

type stageDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
}

type logEntryPayload struct {
	StageID       string  `json:"stage_id"`
	LogDate       string  `json:"log_date"`
	Task          string  `json:"task"`
	TimeSlot      string  `json:"time_slot"`
	Notes         string  `json:"notes"`
	SubcategoryID *string `json:"subcategory_id"`
	DurationMin   int     `json:"duration_min"`
	Mood          int     `json:"mood"`
}

type dailyPointDTO struct {
	Date        string   `json:"date"`
	Efficiency  *float64 `json:"efficiency"`
	DurationMin int      `json:"duration_min"`
}

type weeklyPointDTO struct {
	Week       string   `json:"week"`
	Efficiency *float64 `json:"efficiency"`
}

type stageSpanDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstWeek string `json:"first_week"`
	LastWeek  string `json:"last_week"`
}

type kpiDTO struct {
	TotalHours      float64 `json:"total_hours"`
	ActiveDays      int64   `json:"active_days"`
	AvgDailyMinutes float64 `json:"avg_daily_minutes"`
}

type trendsResponse struct {
	Daily     []dailyPointDTO  `json:"daily"`
	DailySMA  []*float64       `json:"daily_sma"`
	Weekly    []weeklyPointDTO `json:"weekly"`
	WeeklySMA []*float64       `json:"weekly_sma"`
	Stages    []stageSpanDTO   `json:"stages"`
	KPIs      kpiDTO           `json:"kpis"`
}

type categorySliceDTO struct {
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
}

type categoriesResponse struct {
	Main      []categorySliceDTO            `json:"main"`
	Drilldown map[string][]categorySliceDTO `json:"drilldown"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  payload.Username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Users().Create(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID, "username": user.Username})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	report, err := s.trends.Build(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := trendsResponse{
		Daily:     make([]dailyPointDTO, 0, len(report.Daily)),
		DailySMA:  report.DailySMA,
		Weekly:    make([]weeklyPointDTO, 0, len(report.Weekly)),
		WeeklySMA: report.WeeklySMA,
		Stages:    make([]stageSpanDTO, 0, len(report.Stages)),
		KPIs: kpiDTO{
			TotalHours:      report.KPIs.TotalHours,
			ActiveDays:      report.KPIs.ActiveDays,
			AvgDailyMinutes: report.KPIs.AvgDailyMinutes,
		},
	}
	for _, p := range report.Daily {
		resp.Daily = append(resp.Daily, dailyPointDTO{
			Date:        domain.FormatDate(p.Date),
			Efficiency:  p.Efficiency,
			DurationMin: p.DurationMin,
		})
	}
	for _, p := range report.Weekly {
		resp.Weekly = append(resp.Weekly, weeklyPointDTO{
			Week:       p.Week.Label(),
			Efficiency: p.Efficiency,
		})
	}
	for _, span := range report.Stages {
		resp.Stages = append(resp.Stages, stageSpanDTO{
			ID:        span.ID,
			Name:      span.Name,
			FirstWeek: span.FirstWeek.Label(),
			LastWeek:  span.LastWeek.Label(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var stageID *string
	if v := r.URL.Query().Get("stage_id"); v != "" {
		stageID = &v
	}

	breakdown, err := s.trends.Categories(r.Context(), ownerID, stageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := categoriesResponse{
		Main:      make([]categorySliceDTO, 0, len(breakdown.Main)),
		Drilldown: make(map[string][]categorySliceDTO, len(breakdown.Drilldown)),
	}
	for _, slice := range breakdown.Main {
		resp.Main = append(resp.Main, categorySliceDTO(slice))
	}
	for name, slices := range breakdown.Drilldown {
		out := make([]categorySliceDTO, 0, len(slices))
		for _, slice := range slices {
			out = append(out, categorySliceDTO(slice))
		}
		resp.Drilldown[name] = out
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stages, err := s.store.Stages().ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]stageDTO, 0, len(stages))
	for _, st := range stages {
		out = append(out, stageDTO{
			ID:        st.ID,
			Name:      st.Name,
			StartDate: domain.FormatDate(st.StartDate),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateStage(w http.ResponseWriter, r *http.Request) {
	var payload stagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	startDate, err := domain.ParseDate(payload.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	if payload.OwnerID == "" || payload.Name == "" {
		writeError(w, http.StatusBadRequest, "owner_id and name are required")
		return
	}

	stage := &domain.Stage{
		OwnerID:   payload.OwnerID,
		Name:      payload.Name,
		StartDate: startDate,
	}
	if err := s.records.CreateStage(r.Context(), stage); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stageDTO{
		ID:        stage.ID,
		Name:      stage.Name,
		StartDate: domain.FormatDate(stage.StartDate),
	})
}

func (s *Server) handleDeleteStage(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteStage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecomputeStage(w http.ResponseWriter, r *http.Request) {
	if err := s.records.RecomputeStage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	entry, ok := decodeLogEntry(w, r)
	if !ok {
		return
	}
	if err := s.records.AddLog(r.Context(), entry); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": entry.ID})
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	entry, ok := decodeLogEntry(w, r)
	if !ok {
		return
	}
	entry.ID = chi.URLParam(r, "id")
	if err := s.records.UpdateLog(r.Context(), entry); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": entry.ID})
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteLog(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	result, err := s.importer.ImportCSV(r.Context(), ownerID, r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":   result.Rows,
		"stages": result.Stages,
	})
}

func decodeLogEntry(w http.ResponseWriter, r *http.Request) (*domain.LogEntry, bool) {
	var payload logEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	logDate, err := domain.ParseDate(payload.LogDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "log_date must be YYYY-MM-DD")
		return nil, false
	}
	if payload.StageID == "" {
		writeError(w, http.StatusBadRequest, "stage_id is required")
		return nil, false
	}

	return &domain.LogEntry{
		StageID:       payload.StageID,
		LogDate:       logDate,
		Task:          payload.Task,
		TimeSlot:      payload.TimeSlot,
		Notes:         payload.Notes,
		SubcategoryID: payload.SubcategoryID,
		DurationMin:   payload.DurationMin,
		Mood:          payload.Mood,
	}, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := r.URL.Query().Get("user_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return "", false
	}
	return ownerID, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrStageNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
