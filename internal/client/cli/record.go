package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/insuredesk/policykeeper/internal/client/api"
)

// addRecord walks the user through a policy record, submits it for
// validation, and saves it when clean. Violations are printed per field in
// the order the server reports them.
func (a *App) addRecord(ctx context.Context) error {
	rec := api.PolicyRecord{}

	var err error
	if rec.Name, err = getSimpleText(a.reader, "Customer name", os.Stdout); err != nil {
		return err
	}
	if rec.Email, err = getSimpleText(a.reader, "Email", os.Stdout); err != nil {
		return err
	}
	if rec.Phone, err = getSimpleText(a.reader, "Phone (10 digits)", os.Stdout); err != nil {
		return err
	}
	if rec.Address, err = getSimpleText(a.reader, "Address", os.Stdout); err != nil {
		return err
	}

	types, terr := a.policyTypeOptions(ctx)
	if terr != nil {
		return terr
	}
	if rec.PolicyType, err = GetChoice(a.reader, "Policy type", types, os.Stdout); err != nil {
		return err
	}

	if rec.PolicyNumber, err = getSimpleText(a.reader, "Policy number (e.g. AB123456)", os.Stdout); err != nil {
		return err
	}
	if rec.StartDate, err = getSimpleText(a.reader, "Start date (YYYY-MM-DD)", os.Stdout); err != nil {
		return err
	}
	if rec.EndDate, err = getSimpleText(a.reader, "End date (YYYY-MM-DD)", os.Stdout); err != nil {
		return err
	}

	rctx, cancel := a.requestCtx(ctx)
	defer cancel()

	violations, err := a.api.Validate(rctx, rec)
	if err != nil {
		log.Printf("Validation request failed: %s", err.Error())
		return nil
	}
	if len(violations) > 0 {
		printViolations(violations)
		return nil
	}

	id, err := a.api.Save(rctx, rec)
	if err != nil {
		var verr *api.ValidationError
		switch {
		case errors.As(err, &verr):
			printViolations(verr.Violations)
		case errors.Is(err, api.ErrStoreUnavailable):
			log.Printf("Record store unavailable, please try again later")
		case errors.Is(err, api.ErrUnauthorized):
			log.Printf("Session expired, please log in again")
			a.api.Logout()
			a.userName = ""
		default:
			log.Printf("Save failed: %s", err.Error())
		}
		return nil
	}

	fmt.Printf("Saved. Record id: %d\n", id)
	return nil
}

// getRecord fetches and prints a saved record by id.
func (a *App) getRecord(ctx context.Context, idArg string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		fmt.Println("Usage: get <numeric id>")
		return nil
	}

	rctx, cancel := a.requestCtx(ctx)
	defer cancel()

	rec, err := a.api.Get(rctx, id)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			log.Printf("Record %d not found", id)
		case errors.Is(err, api.ErrStoreUnavailable):
			log.Printf("Record store unavailable, please try again later")
		default:
			log.Printf("Fetch failed: %s", err.Error())
		}
		return nil
	}

	printRecord(rec)
	return nil
}

// listTypes prints the policy types offered by the server.
func (a *App) listTypes(ctx context.Context) error {
	types, err := a.policyTypeOptions(ctx)
	if err != nil {
		return err
	}
	for _, t := range types {
		fmt.Println(" -", t)
	}
	return nil
}

func (a *App) policyTypeOptions(ctx context.Context) ([]string, error) {
	rctx, cancel := a.requestCtx(ctx)
	defer cancel()

	types, err := a.api.PolicyTypes(rctx)
	if err != nil {
		return nil, fmt.Errorf("fetching policy types: %w", err)
	}
	return types, nil
}

func (a *App) ping(ctx context.Context) {
	rctx, cancel := a.requestCtx(ctx)
	defer cancel()

	if err := a.api.Ping(rctx); err != nil {
		log.Printf("Server unreachable: %s", err.Error())
		return
	}
	fmt.Println("Server is up")
}

func printViolations(violations []api.Violation) {
	fmt.Println("Record not saved:")
	for _, v := range violations {
		fmt.Printf("  %s: %s\n", v.Field, v.Message)
	}
}

func printRecord(rec *api.PolicyRecord) {
	fmt.Printf("Record #%d\n", rec.ID)
	fmt.Printf("  Name:          %s\n", rec.Name)
	fmt.Printf("  Email:         %s\n", rec.Email)
	fmt.Printf("  Phone:         %s\n", rec.Phone)
	fmt.Printf("  Address:       %s\n", rec.Address)
	fmt.Printf("  Policy type:   %s\n", rec.PolicyType)
	fmt.Printf("  Policy number: %s\n", rec.PolicyNumber)
	fmt.Printf("  Start date:    %s\n", rec.StartDate)
	fmt.Printf("  End date:      %s\n", rec.EndDate)
}
