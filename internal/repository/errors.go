package repository

import appErrors "github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/errors"

func errNotFound(kind string) error {
	return appErrors.Clone(appErrors.ErrNotFound, kind+" not found")
}
