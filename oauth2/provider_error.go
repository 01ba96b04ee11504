package oauth2

import (
	"fmt"

	"github.com/goliatone/go-errors"
	xoauth2 "golang.org/x/oauth2"
)

// ProviderError captures the failure reported by a supplier endpoint.
type ProviderError struct {
	Supplier    Supplier
	Operation   string
	Status      int
	Code        string
	Description string
	Err         error
	Raw         map[string]any
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "supplier error"
	}

	scope := "supplier"
	if e.Supplier != "" && e.Operation != "" {
		scope = fmt.Sprintf("%s %s", e.Supplier, e.Operation)
	} else if e.Supplier != "" {
		scope = string(e.Supplier)
	} else if e.Operation != "" {
		scope = e.Operation
	}

	if e.Description != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s failed with status %d", scope, e.Status)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ProviderError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Supplier != "" {
		meta["supplier"] = string(e.Supplier)
	}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if e.Description != "" {
		meta["description"] = e.Description
	}
	if len(e.Raw) > 0 {
		meta["raw"] = e.Raw
	}

	return meta
}

// wrapProviderError turns err into an ErrAuthenticationProcessing clone
// carrying the supplier details in its metadata.
func wrapProviderError(supplier Supplier, operation string, err error) error {
	meta := map[string]any{
		"supplier":  string(supplier),
		"operation": operation,
	}

	var perr *ProviderError
	var rerr *xoauth2.RetrieveError
	switch {
	case errors.As(err, &perr) && perr != nil:
		for k, v := range perr.Metadata() {
			meta[k] = v
		}
	case errors.As(err, &rerr) && rerr != nil:
		if rerr.Response != nil {
			meta["status"] = rerr.Response.StatusCode
		}
		if rerr.ErrorCode != "" {
			meta["code"] = rerr.ErrorCode
		}
		if rerr.ErrorDescription != "" {
			meta["description"] = rerr.ErrorDescription
		}
	case err != nil:
		meta["error"] = err.Error()
	}

	return authenticationFailed(err, meta)
}
