// internal/app/features/approvals/handler.go
package approvals

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/mwalimuhub/unionhub/internal/app/features/errors"
	"github.com/mwalimuhub/unionhub/internal/app/system/approval"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/app/system/htmlsanitize"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the approval queue for officers and role approvers.
type Handler struct {
	Workflow *approval.Workflow
	Log      *zap.Logger
}

func NewHandler(workflow *approval.Workflow, logger *zap.Logger) *Handler {
	return &Handler{Workflow: workflow, Log: logger}
}

func actorFromRequest(r *http.Request) (approval.Actor, bool) {
	role, name, userID, ok := authz.UserCtx(r)
	if !ok {
		return approval.Actor{}, false
	}
	return approval.Actor{ID: userID, Name: name, Role: role}, true
}

type listData struct {
	viewdata.BaseVM
	Requests []models.ApprovalRequest
}

// ServeList shows the open requests the signed-in role can act on.
// GET /approvals
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Workflow.PendingFor(ctx, role)
	if err != nil {
		h.Log.Error("pending approvals load failed", zap.Error(err))
		http.Error(w, "failed to load approvals", http.StatusInternalServerError)
		return
	}

	data := listData{
		BaseVM:   viewdata.New(r, "Approvals", "/dashboard"),
		Requests: reqs,
	}
	templates.Render(w, r, "approvals_list", data)
}

type detailData struct {
	viewdata.BaseVM
	Request *models.ApprovalRequest
	CanAct  bool
}

// ServeDetail shows one request with its full history.
// GET /approvals/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := requestID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Workflow.GetRequest(ctx, id)
	if err != nil {
		h.renderWorkflowError(w, r, err, "load the request")
		return
	}

	data := detailData{
		BaseVM:  viewdata.New(r, "Approval Request", "/approvals"),
		Request: req,
		CanAct:  !req.Terminal() && mayActOn(r, req, actor.Role),
	}
	templates.Render(w, r, "approvals_detail", data)
}

// Approve applies one approval and reports the resulting state.
// POST /approvals/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, err := requestID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	comment := htmlsanitize.UGC(r.FormValue("comment"))
	if _, err := h.Workflow.ApproveRequest(ctx, id, actor, comment); err != nil {
		h.renderWorkflowError(w, r, err, "approve the request")
		return
	}

	http.Redirect(w, r, "/approvals/"+id.Hex(), http.StatusSeeOther)
}

// Reject finalizes a request as rejected; a reason is mandatory.
// POST /approvals/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, err := requestID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	reason := htmlsanitize.UGC(r.FormValue("reason"))
	if err := h.Workflow.RejectRequest(ctx, id, actor, reason); err != nil {
		h.renderWorkflowError(w, r, err, "reject the request")
		return
	}

	http.Redirect(w, r, "/approvals/"+id.Hex(), http.StatusSeeOther)
}

// Comment adds a note to the request's history without deciding it.
// POST /approvals/{id}/comment
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, err := requestID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	comment := htmlsanitize.UGC(r.FormValue("comment"))
	if err := h.Workflow.CommentRequest(ctx, id, actor, comment); err != nil {
		h.renderWorkflowError(w, r, err, "add the comment")
		return
	}

	http.Redirect(w, r, "/approvals/"+id.Hex(), http.StatusSeeOther)
}

// renderWorkflowError maps workflow failures to user-visible pages. The
// message names the action that failed; the detail stays in the log.
func (h *Handler) renderWorkflowError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var notFound *approval.NotFoundError
	var validation *approval.ValidationError
	var permission *approval.PermissionError

	switch {
	case errors.As(err, &notFound):
		http.NotFound(w, r)
	case errors.As(err, &permission):
		uierrors.RenderForbidden(w, r, "You are not an approver for this request.", "/approvals")
	case errors.As(err, &validation):
		uierrors.RenderForbidden(w, r, "Failed to "+action+": "+validation.Error(), "/approvals")
	case errors.Is(err, approval.ErrConflict):
		uierrors.RenderForbidden(w, r, "Another approver acted on this request first. Review the current state and try again.", "/approvals")
	default:
		h.Log.Error("approval workflow error", zap.String("action", action), zap.Error(err))
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}

func requestID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
}

func mayActOn(r *http.Request, req *models.ApprovalRequest, role string) bool {
	if req.ApproverRole == models.ApproverDual {
		return authz.IsOfficer(r)
	}
	return role == req.ApproverRole
}
