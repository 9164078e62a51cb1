package domain

import (
	"fmt"

	apperrors "github.com/allisson/identity/internal/errors"
)

// Repository errors.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user not found")

	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.Wrap(apperrors.ErrNotFound, "role not found")

	// ErrUserNameTaken indicates the normalized username is already in use.
	ErrUserNameTaken = apperrors.Wrap(apperrors.ErrConflict, "username already taken")

	// ErrEmailTaken indicates the normalized email is already in use.
	ErrEmailTaken = apperrors.Wrap(apperrors.ErrConflict, "email already taken")

	// ErrRoleNameTaken indicates the normalized role name is already in use.
	ErrRoleNameTaken = apperrors.Wrap(apperrors.ErrConflict, "role name already taken")

	// ErrConcurrencyFailure indicates the record changed since it was read.
	ErrConcurrencyFailure = apperrors.Wrap(apperrors.ErrConflict, "optimistic concurrency failure")
)

// Identity operation failure codes.
const (
	CodeDuplicateUserName  = "DuplicateUserName"
	CodeDuplicateEmail     = "DuplicateEmail"
	CodeDuplicateRoleName  = "DuplicateRoleName"
	CodeInvalidUserName    = "InvalidUserName"
	CodeInvalidEmail       = "InvalidEmail"
	CodeInvalidRoleName    = "InvalidRoleName"
	CodeInvalidToken       = "InvalidToken"
	CodePasswordMismatch   = "PasswordMismatch"
	CodeUserNotFound       = "UserNotFound"
	CodeRoleNotFound       = "RoleNotFound"
	CodeConcurrencyFailure = "ConcurrencyFailure"
)

func DuplicateUserName(userName string) apperrors.Detail {
	return apperrors.Detail{
		Code:        CodeDuplicateUserName,
		Description: fmt.Sprintf("Username '%s' is already taken.", userName),
	}
}

func DuplicateEmail(email string) apperrors.Detail {
	return apperrors.Detail{
		Code:        CodeDuplicateEmail,
		Description: fmt.Sprintf("Email '%s' is already taken.", email),
	}
}

func DuplicateRoleName(name string) apperrors.Detail {
	return apperrors.Detail{
		Code:        CodeDuplicateRoleName,
		Description: fmt.Sprintf("Role name '%s' is already taken.", name),
	}
}

func InvalidUserName(userName string) apperrors.Detail {
	return apperrors.Detail{
		Code:        CodeInvalidUserName,
		Description: fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", userName),
	}
}

func InvalidEmail(email string) apperrors.Detail {
	return apperrors.Detail{
		Code:        CodeInvalidEmail,
		Description: fmt.Sprintf("Email '%s' is invalid.", email),
	}
}

func InvalidRoleName(name string) apperrors.Detail {
	return apperrors.Detail{
		Code:        CodeInvalidRoleName,
		Description: fmt.Sprintf("Role name '%s' is invalid.", name),
	}
}

func InvalidToken() apperrors.Detail {
	return apperrors.Detail{Code: CodeInvalidToken, Description: "Invalid token."}
}

func PasswordMismatch() apperrors.Detail {
	return apperrors.Detail{Code: CodePasswordMismatch, Description: "Incorrect password."}
}

func UserNotFound() apperrors.Detail {
	return apperrors.Detail{Code: CodeUserNotFound, Description: "User not found."}
}

func RolesNotFound() apperrors.Detail {
	return apperrors.Detail{Code: CodeRoleNotFound, Description: "One or more roles not found."}
}

func ConcurrencyFailure() apperrors.Detail {
	return apperrors.Detail{
		Code:        CodeConcurrencyFailure,
		Description: "Optimistic concurrency failure, object has been modified.",
	}
}
