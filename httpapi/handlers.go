package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/billing"
)

type formAction func(ctx context.Context, in action.Input) (action.Outcome[goSaaS.FormState], error)

type handlers struct {
	engine  *goSaaS.Engine
	maxBody int64
}

type redirectBody struct {
	Redirect string `json:"redirect"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *handlers) form(fn formAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := h.decodeInput(w, r)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorBody{Error: "Invalid request body"})
			return
		}

		out, err := fn(r.Context(), in)
		if err != nil {
			h.fault(w, r, err)
			return
		}

		switch out.Kind {
		case action.Redirect:
			w.Header().Set("Location", out.Location)
			render.Status(r, http.StatusSeeOther)
			render.JSON(w, r, redirectBody{Redirect: out.Location})
		case action.ValidationFailed:
			render.JSON(w, r, goSaaS.FormState{Error: out.Message})
		default:
			render.JSON(w, r, out.Value)
		}
	}
}

// decodeInput accepts url-encoded and multipart forms or a flat JSON object.
func (h *handlers) decodeInput(w http.ResponseWriter, r *http.Request) (action.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(h.maxBody); err != nil {
				return nil, err
			}
		} else if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}

	// Numbers stay textual so the schema, not float rounding, decides what is valid.
	var raw map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	err := dec.Decode(&raw)
	_, _ = io.Copy(io.Discard, r.Body)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return url.Values{}, nil
		}
		return nil, err
	}
	in := make(url.Values, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			in.Set(k, v)
		case json.Number:
			in.Set(k, v.String())
		default:
			in.Set(k, fmt.Sprint(v))
		}
	}
	return in, nil
}

func (h *handlers) fault(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"
	switch {
	case errors.Is(err, action.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, "User is not authenticated"
	case errors.Is(err, action.ErrUserNotFound):
		status, msg = http.StatusNotFound, "User not found"
	case errors.Is(err, billing.ErrBillingDisabled):
		status, msg = http.StatusServiceUnavailable, "Billing is not configured"
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("action failed")
	}
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: msg})
}

func (h *handlers) user(w http.ResponseWriter, r *http.Request) {
	user, err := h.engine.CurrentUser(r.Context())
	if err != nil {
		h.fault(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

func (h *handlers) team(w http.ResponseWriter, r *http.Request) {
	team, err := h.engine.TeamForUser(r.Context())
	if err != nil {
		h.fault(w, r, err)
		return
	}
	render.JSON(w, r, team)
}

func (h *handlers) activity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.engine.ActivityLogs(r.Context())
	if err != nil {
		h.fault(w, r, err)
		return
	}
	render.JSON(w, r, logs)
}

func (h *handlers) pricing(w http.ResponseWriter, r *http.Request) {
	prices, err := h.engine.Prices(r.Context())
	if err != nil {
		h.fault(w, r, err)
		return
	}
	render.JSON(w, r, prices)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := h.engine.CurrentUser(r.Context())
	if err != nil {
		h.fault(w, r, err)
		return
	}
	if user == nil {
		http.Redirect(w, r, action.SignInPath, http.StatusSeeOther)
		return
	}
	team, err := h.engine.TeamForUser(r.Context())
	if err != nil {
		h.fault(w, r, err)
		return
	}
	render.JSON(w, r, struct {
		User *goSaaS.UserView `json:"user"`
		Team *goSaaS.TeamView `json:"team"`
	}{User: user, Team: team})
}

// completeCheckout is the provider's browser redirect target.
func (h *handlers) completeCheckout(w http.ResponseWriter, r *http.Request) {
	out, err := h.engine.CompleteCheckout(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("complete checkout")
		http.Redirect(w, r, "/error", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, out.Location, http.StatusSeeOther)
}

func (h *handlers) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorBody{Error: "Invalid request body"})
		return
	}

	err = h.engine.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		render.JSON(w, r, map[string]bool{"received": true})
	case errors.Is(err, goSaaS.ErrInvalidWebhook):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorBody{Error: "Webhook signature verification failed."})
	default:
		h.fault(w, r, err)
	}
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	status := h.engine.Health(r.Context())
	if !status.OK() {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, map[string]any{
		"store": status.StoreAvailable,
		"redis": status.RedisAvailable,
	})
}
