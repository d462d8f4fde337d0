package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"

	"leadtracker/internal/database"
	"leadtracker/internal/export"
	"leadtracker/internal/models"
	"leadtracker/internal/service"
)

// Mensajes para el usuario
const (
	msgRequiredFields = "Por favor complete todos los campos obligatorios"
	msgLeadCreated    = "Lead registrado exitosamente!"
	msgDuplicateEmail = "Error al registrar el lead. El correo ya está registrado."
	msgCreateFailed   = "Error al registrar el lead. Inténtelo de nuevo más tarde."
	msgTooManyLeads   = "Demasiados registros desde su conexión. Inténtelo más tarde."
	msgLeadUpdated    = "Lead actualizado exitosamente!"
	msgUpdateDup      = "Error al actualizar el lead. El correo ya pertenece a otro lead."
	msgUpdateFailed   = "Error al actualizar el lead."
	msgLeadDeleted    = "Lead eliminado exitosamente!"
	msgDeleteFailed   = "Error al eliminar el lead."
	msgLeadNotFound   = "Lead no encontrado"
	msgListFailed     = "No se pudieron cargar los leads. Inténtelo de nuevo más tarde."
)

func (s *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", pageData{
		Title:     "Registro",
		Interests: s.leads.Interests(),
	})
}

func (s *HTTPServer) handleLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.leads.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID(r.Context())).Msg("failed to list leads")
		s.render(w, r, http.StatusOK, "leads.html", pageData{Title: "Leads"},
			flashMessage{Category: categoryError, Text: msgListFailed})
		return
	}
	s.render(w, r, http.StatusOK, "leads.html", pageData{Title: "Leads", Leads: leads})
}

func (s *HTTPServer) handleAddLead(w http.ResponseWriter, r *http.Request) {
	in := formInput(r)

	if s.limiter != nil && s.cfg.RateLimit.SubmissionsPerWindow > 0 {
		allowed, err := s.limiter.Allow(r.Context(), clientIP(r), s.cfg.RateLimit.SubmissionsPerWindow, s.cfg.RateLimit.Window())
		if err != nil {
			s.logger.Warn().Err(err).Msg("submission limiter failed, letting request through")
		} else if !allowed {
			s.flashes.add(w, r, categoryWarning, msgTooManyLeads)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	_, err := s.leads.Submit(r.Context(), in)
	var ve *service.ValidationError
	switch {
	case err == nil:
		s.flashes.add(w, r, categorySuccess, msgLeadCreated)
	case errors.As(err, &ve):
		s.flashes.add(w, r, categoryError, validationMessage(ve))
	case errors.Is(err, database.ErrDuplicateEmail):
		s.flashes.add(w, r, categoryError, msgDuplicateEmail)
	default:
		s.logger.Error().Err(err).Str("request_id", requestID(r.Context())).Msg("failed to register lead")
		s.flashes.add(w, r, categoryError, msgCreateFailed)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) handleAPILeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.leads.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list leads for api")
		writeError(w, http.StatusServiceUnavailable, "leads are temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	leads, err := s.leads.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list leads for export")
		s.flashes.add(w, r, categoryError, msgListFailed)
		http.Redirect(w, r, "/leads", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.xlsx"`)
	if err := export.WriteLeadsXLSX(w, leads); err != nil {
		s.logger.Error().Err(err).Msg("failed to write leads export")
	}
}

func (s *HTTPServer) handleEditLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}
	lead, ok := s.loadLead(w, r, id)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "edit_lead.html", s.editPage(id, lead.Input()))
}

func (s *HTTPServer) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}
	if _, ok := s.loadLead(w, r, id); !ok {
		return
	}

	in := formInput(r)
	err := s.leads.Edit(r.Context(), id, in)
	if err == nil {
		s.flashes.add(w, r, categorySuccess, msgLeadUpdated)
		http.Redirect(w, r, "/leads", http.StatusFound)
		return
	}

	var msg string
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		msg = validationMessage(ve)
	case errors.Is(err, database.ErrDuplicateEmail):
		msg = msgUpdateDup
	default:
		s.logger.Error().Err(err).Int64("lead_id", id).Msg("failed to update lead")
		msg = msgUpdateFailed
	}
	s.render(w, r, http.StatusOK, "edit_lead.html", s.editPage(id, in.Trimmed()),
		flashMessage{Category: categoryError, Text: msg})
}

func (s *HTTPServer) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	if err := s.leads.Remove(r.Context(), id); err != nil {
		s.logger.Error().Err(err).Int64("lead_id", id).Msg("failed to delete lead")
		s.flashes.add(w, r, categoryError, msgDeleteFailed)
	} else {
		s.flashes.add(w, r, categorySuccess, msgLeadDeleted)
	}
	http.Redirect(w, r, "/leads", http.StatusFound)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.leads.Health(r.Context())

	resp := map[string]any{
		"status":   "OK",
		"database": "error",
		"engine":   status.Engine,
		"service":  models.ServiceName,
	}
	if status.Reachable {
		resp["database"] = "connected"
		resp["version"] = status.Version
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadLead fetches the lead or answers the request itself when it cannot.
func (s *HTTPServer) loadLead(w http.ResponseWriter, r *http.Request, id int64) (*models.Lead, bool) {
	lead, err := s.leads.Get(r.Context(), id)
	if err == nil {
		return lead, true
	}
	if errors.Is(err, database.ErrNotFound) {
		s.flashes.add(w, r, categoryError, msgLeadNotFound)
	} else {
		s.logger.Error().Err(err).Int64("lead_id", id).Msg("failed to load lead")
		s.flashes.add(w, r, categoryError, msgListFailed)
	}
	http.Redirect(w, r, "/leads", http.StatusFound)
	return nil, false
}

func (s *HTTPServer) editPage(id int64, form models.LeadInput) pageData {
	interests := s.leads.Interests()
	// stored interests are free text and may not be on the current list
	if form.Interest != "" && !slices.Contains(interests, form.Interest) {
		interests = append(interests, form.Interest)
	}
	return pageData{
		Title:     "Editar lead",
		Interests: interests,
		LeadID:    id,
		Form:      form,
	}
}

func leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func formInput(r *http.Request) models.LeadInput {
	return models.LeadInput{
		FullName: r.PostFormValue("nombre"),
		Email:    r.PostFormValue("correo"),
		Phone:    r.PostFormValue("telefono"),
		Interest: r.PostFormValue("interes"),
	}
}

func validationMessage(ve *service.ValidationError) string {
	switch ve.Reason {
	case service.ReasonRequired:
		return msgRequiredFields
	case service.ReasonInvalid:
		return "El correo electrónico no es válido."
	default:
		return fmt.Sprintf("El campo %s admite como máximo %d caracteres.", fieldLabels[ve.Field], ve.Max)
	}
}

var fieldLabels = map[string]string{
	"full_name": "nombre",
	"email":     "correo",
	"phone":     "teléfono",
	"interest":  "interés",
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}
