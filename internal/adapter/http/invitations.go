package http

import (
	"career-coach/internal/domain"

	"github.com/gofiber/fiber/v2"
)

type collaboratorReq struct {
	PlanID string `json:"planId"`
	Email  string `json:"email"`
}

type mentorReq struct {
	Email string `json:"email"`
}

type tokenReq struct {
	Token string `json:"token"`
}

// invitationView never exposes the token hash or the inviter's id.
type invitationView struct {
	ID          string                  `json:"id"`
	Kind        domain.InvitationKind   `json:"kind"`
	ResourceID  string                  `json:"resourceId"`
	TargetEmail string                  `json:"email"`
	Status      domain.InvitationStatus `json:"status"`
}

func viewOf(inv *domain.Invitation) invitationView {
	return invitationView{
		ID:          inv.ID.String(),
		Kind:        inv.Kind,
		ResourceID:  inv.ResourceID,
		TargetEmail: inv.TargetEmail,
		Status:      inv.Status,
	}
}

func (h *Handler) InviteCollaborator(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req collaboratorReq
	if err := parse(c, &req); err != nil {
		return err
	}
	inv, err := h.invitations.InviteCollaborator(c.UserContext(), id, req.PlanID, req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"invitation": viewOf(inv)})
}

func (h *Handler) InviteMentor(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req mentorReq
	if err := parse(c, &req); err != nil {
		return err
	}
	inv, err := h.invitations.InviteMentor(c.UserContext(), id, req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"invitation": viewOf(inv)})
}

func (h *Handler) AcceptInvitation(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req tokenReq
	if err := parse(c, &req); err != nil {
		return err
	}
	inv, err := h.invitations.Accept(c.UserContext(), id, req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"invitation": viewOf(inv)})
}

func (h *Handler) DeclineInvitation(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req tokenReq
	if err := parse(c, &req); err != nil {
		return err
	}
	inv, err := h.invitations.Decline(c.UserContext(), id, req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"invitation": viewOf(inv)})
}
