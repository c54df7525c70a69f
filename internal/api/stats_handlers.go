package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.statsSvc.Summary(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStatsDaily(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7, 90)
	stats, err := s.statsSvc.Daily(r.Context(), currentUser(r).ID, days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dailyStats": stats})
}

func (s *Server) handleStatsWeekly(w http.ResponseWriter, r *http.Request) {
	weeks := queryInt(r, "weeks", 4, 52)
	stats, err := s.statsSvc.Weekly(r.Context(), currentUser(r).ID, weeks)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weeklyStats": stats})
}

func (s *Server) handleStatsMonthly(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 6, 24)
	stats, err := s.statsSvc.Monthly(r.Context(), currentUser(r).ID, months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"monthlyStats": stats})
}

func (s *Server) handleStatsEOD(w http.ResponseWriter, r *http.Request) {
	rangeName := r.URL.Query().Get("range")
	stats, err := s.statsSvc.EOD(r.Context(), currentUser(r).ID, rangeName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"eodStats": stats})
}

// queryInt parses a positive integer query param with a default and cap.
func queryInt(r *http.Request, name string, def, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
