package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/users"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// UserList pages through staff accounts. Requires user.manage.
func UserList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := userFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// UserCreate provisions a staff account. Requires user.manage.
func UserCreate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Create(r.Context(), actor, storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, user)
	}
}

// UserUpdate mutates a staff account. Requires user.manage.
func UserUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := pathUUID(chi.URLParam(r, "userID"), "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), actor, storeID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

type createUserRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=10,max=128"`
	FirstName string   `json:"firstName" validate:"required,max=80"`
	LastName  string   `json:"lastName" validate:"required,max=80"`
	Role      string   `json:"role" validate:"required"`
	StoreIDs  []string `json:"storeIds" validate:"required,min=1,dive,uuid"`
}

func (r createUserRequest) toCreateInput() (users.CreateUserInput, error) {
	role, err := enums.ParseUserRole(strings.TrimSpace(r.Role))
	if err != nil {
		return users.CreateUserInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}

	storeIDs, err := parseUUIDList(r.StoreIDs, "store id")
	if err != nil {
		return users.CreateUserInput{}, err
	}

	return users.CreateUserInput{
		Email:     strings.TrimSpace(strings.ToLower(r.Email)),
		Password:  r.Password,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Role:      role,
		StoreIDs:  storeIDs,
	}, nil
}

type updateUserRequest struct {
	FirstName *string   `json:"firstName,omitempty" validate:"omitempty,max=80"`
	LastName  *string   `json:"lastName,omitempty" validate:"omitempty,max=80"`
	Role      *string   `json:"role,omitempty"`
	IsActive  *bool     `json:"isActive,omitempty"`
	StoreIDs  *[]string `json:"storeIds,omitempty" validate:"omitempty,dive,uuid"`
	Password  *string   `json:"password,omitempty" validate:"omitempty,min=10,max=128"`
}

func (r updateUserRequest) toUpdateInput() (users.UpdateUserInput, error) {
	input := users.UpdateUserInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		IsActive:  r.IsActive,
		Password:  r.Password,
	}

	if r.Role != nil {
		role, err := enums.ParseUserRole(strings.TrimSpace(*r.Role))
		if err != nil {
			return users.UpdateUserInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		input.Role = &role
	}
	if r.StoreIDs != nil {
		storeIDs, err := parseUUIDList(*r.StoreIDs, "store id")
		if err != nil {
			return users.UpdateUserInput{}, err
		}
		input.StoreIDs = &storeIDs
	}

	return input, nil
}

func userFiltersFromQuery(r *http.Request) (users.ListFilters, error) {
	query := r.URL.Query()
	var filters users.ListFilters

	if raw := strings.TrimSpace(query.Get("role")); raw != "" {
		role, err := enums.ParseUserRole(raw)
		if err != nil {
			return users.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		filters.Role = &role
	}
	if raw := strings.TrimSpace(query.Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return users.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid active flag")
		}
		filters.Active = &active
	}

	return filters, nil
}

func parseUUIDList(values []string, field string) ([]uuid.UUID, error) {
	result := make([]uuid.UUID, 0, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		parsed, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
		}
		result = append(result, parsed)
	}
	return result, nil
}
