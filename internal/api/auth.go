package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/fxboard/internal/auth"
)

const authPath = "/api/auth"

type authResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

type authOutput struct {
	Status    int
	SetCookie string `header:"Set-Cookie"`
	Body      authResult
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrInvalidAdminPassword),
		errors.Is(err, auth.ErrInvalidLoginPassword):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmptyPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func authFailure(err error) *authOutput {
	out := &authOutput{Status: authStatus(err)}
	out.Body.Message = auth.Message(err)
	return out
}

func registerAuthHandlers(api huma.API, svc Service) {
	type loginInput struct {
		Body struct {
			Password string `json:"password,omitempty" doc:"Shared login password"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "login", Method: http.MethodPost, Path: authPath, Summary: "Log in and receive a session cookie", Tags: []string{"Auth"}},
		func(ctx context.Context, input *loginInput) (*authOutput, error) {
			sess, err := svc.Login(ctx, input.Body.Password)
			if err != nil {
				if authStatus(err) == http.StatusInternalServerError {
					slog.Error("login failed", "error", err)
				}
				return authFailure(err), nil
			}
			out := &authOutput{Status: http.StatusOK, SetCookie: sess.Cookie.String()}
			out.Body.Success = true
			out.Body.Token = sess.Token
			return out, nil
		})

	type changePasswordInput struct {
		Body struct {
			AdminPassword string `json:"adminPassword,omitempty"`
			OldPassword   string `json:"oldPassword,omitempty"`
			NewPassword   string `json:"newPassword,omitempty"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "change-password", Method: http.MethodPost, Path: "/api/admin/change-password", Summary: "Change the shared login password", Tags: []string{"Auth"}},
		func(ctx context.Context, input *changePasswordInput) (*authOutput, error) {
			err := svc.ChangePassword(ctx, input.Body.AdminPassword, input.Body.OldPassword, input.Body.NewPassword)
			if err != nil {
				slog.Warn("password change rejected", "error", err)
				return authFailure(err), nil
			}
			slog.Info("login password changed")
			out := &authOutput{Status: http.StatusOK}
			out.Body.Success = true
			out.Body.Message = auth.MsgPasswordUpdated
			return out, nil
		})
}
