package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pkg.jsn.cam/gentexts/internal/archive"
	"pkg.jsn.cam/gentexts/pkg/gentexts"
	"pkg.jsn.cam/gentexts/pkg/gentexts/httpx"
	"pkg.jsn.cam/gentexts/pkg/gentexts/protocol"
)

// maxHistoryLimit caps the limit query parameter
const maxHistoryLimit = 500

func (s *Server) handleTextList(w http.ResponseWriter, r *http.Request) error {
	l, rec, err := s.backend.TextList(r.Context())
	if err != nil {
		return s.generationError(w, err)
	}
	defer l.Release()

	httpx.JSON(w, http.StatusOK, protocol.TextListResponse{
		ID:    rec.ID,
		Count: l.Len(),
		Texts: l.Texts(),
	})
	return nil
}

func (s *Server) handleRandomText(w http.ResponseWriter, r *http.Request) error {
	text, err := s.backend.RandomText(r.Context())
	if err != nil {
		return s.generationError(w, err)
	}

	httpx.JSON(w, http.StatusOK, protocol.RandomTextResponse{Text: text})
	return nil
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	rec, err := s.backend.Refresh(r.Context())
	if err != nil {
		return s.generationError(w, err)
	}

	httpx.JSON(w, http.StatusOK, protocol.TextListResponse{
		ID:    rec.ID,
		Count: rec.Count,
		Texts: rec.Texts,
	})
	return nil
}

// generationError answers 503 for allocation failures, which mean "nothing
// this time", and lets anything else become a 500
func (s *Server) generationError(w http.ResponseWriter, err error) error {
	if errors.Is(err, gentexts.ErrAllocation) {
		httpx.Error(w, http.StatusServiceUnavailable, err.Error())
		return nil
	}
	return err
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) error {
	limit := archive.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return nil
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.backend.History(limit)
	if err != nil {
		return err
	}

	resp := protocol.HistoryResponse{Entries: make([]protocol.HistoryEntry, 0, len(records))}
	for _, rec := range records {
		entry := historyEntry(rec)
		entry.Texts = nil
		resp.Entries = append(resp.Entries, entry)
	}

	httpx.JSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) handleHistoryRecord(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	rec, err := s.backend.HistoryRecord(id)
	if errors.Is(err, archive.ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "text list not found: "+id)
		return nil
	}
	if err != nil {
		return err
	}

	httpx.JSON(w, http.StatusOK, historyEntry(rec))
	return nil
}

func historyEntry(rec archive.Record) protocol.HistoryEntry {
	return protocol.HistoryEntry{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Count:     rec.Count,
		Bytes:     rec.Bytes(),
		Texts:     rec.Texts,
	}
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) error {
	snap, err := s.backend.WorldTime(r.Context())
	if err != nil {
		s.logger.Warn("time lookup failed", zap.Error(err))
		httpx.Error(w, http.StatusBadGateway, err.Error())
		return nil
	}

	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	httpx.JSON(w, http.StatusOK, protocol.TimeResponse{
		Timezone:     snap.Timezone,
		Datetime:     snap.Datetime,
		UTCOffset:    snap.UTCOffset,
		Abbreviation: snap.Abbreviation,
		UnixTime:     snap.UnixTime,
		Title:        snap.Title(),
		FetchedAt:    fetchedAt,
	})
	return nil
}

func (s *Server) handleElapsed(w http.ResponseWriter, r *http.Request) error {
	httpx.JSON(w, http.StatusOK, protocol.ElapsedResponse{Seconds: s.backend.ElapsedSeconds()})
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) error {
	httpx.JSON(w, http.StatusOK, s.backend.QuotaStats())
	return nil
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) error {
	httpx.JSON(w, http.StatusOK, protocol.VersionResponse{Version: protocol.Version})
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	httpx.JSON(w, http.StatusOK, protocol.HealthResponse{Status: "ok"})
	return nil
}
