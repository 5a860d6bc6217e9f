// Package smoke checks a live catalog against the rules it is expected to
// enforce and cleans up after itself.
package smoke

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/catalog"
	"go.opentelemetry.io/otel"
)

type client interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	AddProduct(ctx context.Context, p catalog.Product) (catalog.AddResponse, error)
	EditProduct(ctx context.Context, p catalog.Product) (catalog.StatusResponse, error)
	DeleteProduct(ctx context.Context, id catalog.Int) (catalog.StatusResponse, error)
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario string   `json:"scenario"`
	Failures []string `json:"failures,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Passed reports whether the scenario had no failures.
func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

func (r *Result) fail(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Report collects the results of a run.
type Report struct {
	Results []Result `json:"results"`
	// Cleanup lists products that could not be deleted after the run.
	Cleanup []string `json:"cleanup,omitempty"`
}

// Passed reports whether every scenario passed.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}

	return true
}

// Runner executes the catalog scenarios.
type Runner struct {
	client  client
	created []catalog.Int
}

// NewRunner creates a runner over client.
func NewRunner(client client) *Runner {
	return &Runner{
		client: client,
	}
}

// Run executes every scenario, deletes the products it created and returns
// the report. Scenario failures are reported, not returned as errors.
func (r *Runner) Run(ctx context.Context) Report {
	ctx, span := otel.Tracer("smoke").Start(ctx, "Runner.Run")
	defer span.End()

	scenarios := []struct {
		name string
		run  func(ctx context.Context, res *Result)
	}{
		{"add valid product", r.addValid},
		{"add invalid product", r.addInvalid},
		{"add duplicate title", r.addDuplicateTitle},
		{"edit product", r.editValid},
		{"edit missing product", r.editMissing},
		{"edit with invalid fields", r.editInvalid},
		{"delete product", r.deleteExisting},
		{"delete missing product", r.deleteMissing},
	}

	var report Report
	for _, sc := range scenarios {
		res := Result{Scenario: sc.name}
		sc.run(ctx, &res)

		slog.InfoContext(ctx, "Catalog scenario finished",
			"scenario", sc.name,
			"passed", res.Passed(),
			"failures", len(res.Failures),
			"warnings", len(res.Warnings),
		)
		report.Results = append(report.Results, res)
	}

	report.Cleanup = r.cleanup(ctx)

	return report
}

func (r *Runner) addValid(ctx context.Context, res *Result) {
	for _, p := range validAddProducts() {
		added, ok := r.add(ctx, res, p)
		if !ok {
			continue
		}
		if !isSuccess(added.HTTPStatus) {
			res.fail("%q: http status %d", p.Title, added.HTTPStatus)
		}

		stored, found := r.find(ctx, res, added.ID)
		if !found {
			res.fail("%q: product %d is not listed", p.Title, added.ID)
			continue
		}
		if !stored.SameContent(p) {
			res.fail("%q: stored product differs from the request", p.Title)
		}
	}
}

func (r *Runner) addInvalid(ctx context.Context, res *Result) {
	for i, v := range invalidVariants(baseProduct()) {
		p := v.product
		p.Title = fmt.Sprintf("title%d", i+1)

		added, ok := r.add(ctx, res, p)
		if !ok {
			continue
		}
		if added.Status != catalog.StatusRejected {
			res.warn("%s: catalog replied with status %d", v.name, added.Status)
		}

		if _, found := r.find(ctx, res, added.ID); found && added.ID != 0 {
			res.fail("%s: product %d was created", v.name, added.ID)
		}
	}
}

func (r *Runner) addDuplicateTitle(ctx context.Context, res *Result) {
	p := baseProduct()
	p.Title = "alias_title"

	first, ok := r.add(ctx, res, p)
	if !ok {
		return
	}
	second, ok := r.add(ctx, res, p)
	if !ok {
		return
	}

	products, err := r.client.ListProducts(ctx)
	if err != nil {
		res.fail("list products: %v", err)
		return
	}

	firstStored, ok1 := catalog.Find(products, first.ID)
	secondStored, ok2 := catalog.Find(products, second.ID)
	if !ok1 || !ok2 {
		res.fail("duplicate products are not listed")
		return
	}

	if want := catalog.DuplicateAlias(firstStored.Alias); secondStored.Alias != want {
		res.fail("second alias is %q, want %q", secondStored.Alias, want)
	}
}

func (r *Runner) editValid(ctx context.Context, res *Result) {
	added, ok := r.add(ctx, res, baseProduct())
	if !ok {
		return
	}

	update := editedProduct()
	update.ID = added.ID
	edited, err := r.client.EditProduct(ctx, update)
	if err != nil {
		res.fail("edit product %d: %v", added.ID, err)
		return
	}
	if edited.Status != catalog.StatusAccepted {
		res.fail("edit product %d: status %d", added.ID, edited.Status)
	}

	stored, found := r.find(ctx, res, added.ID)
	if !found {
		res.fail("product %d is not listed after edit", added.ID)
		return
	}
	if !stored.SameContent(update) {
		res.fail("product %d was not updated", added.ID)
	}
}

func (r *Runner) editMissing(ctx context.Context, res *Result) {
	update := editedProduct()
	update.ID = missingProductID

	edited, err := r.client.EditProduct(ctx, update)
	if err != nil {
		res.fail("edit product %d: %v", missingProductID, err)
		return
	}
	if edited.Status != catalog.StatusRejected {
		res.fail("edit of missing product returned status %d", edited.Status)
	}
	if isSuccess(edited.HTTPStatus) {
		res.warn("edit of missing product answered with http status %d", edited.HTTPStatus)
	}
}

func (r *Runner) editInvalid(ctx context.Context, res *Result) {
	for _, v := range invalidVariants(editedProduct()) {
		added, ok := r.add(ctx, res, baseProduct())
		if !ok {
			continue
		}

		update := v.product
		update.ID = added.ID
		edited, err := r.client.EditProduct(ctx, update)
		if err != nil {
			res.fail("%s: %v", v.name, err)
			continue
		}
		if edited.Status != catalog.StatusRejected {
			res.fail("%s: edit returned status %d", v.name, edited.Status)
		}
		if isSuccess(edited.HTTPStatus) {
			res.warn("%s: rejected edit answered with http status %d", v.name, edited.HTTPStatus)
		}
	}
}

func (r *Runner) deleteExisting(ctx context.Context, res *Result) {
	p := editedProduct()
	p.Status = 1

	added, ok := r.add(ctx, res, p)
	if !ok {
		return
	}

	deleted, err := r.client.DeleteProduct(ctx, added.ID)
	if err != nil {
		res.fail("delete product %d: %v", added.ID, err)
		return
	}
	if !isSuccess(deleted.HTTPStatus) {
		res.fail("delete product %d: http status %d", added.ID, deleted.HTTPStatus)
	}

	if _, found := r.find(ctx, res, added.ID); found {
		res.fail("product %d is still listed", added.ID)
	}
}

func (r *Runner) deleteMissing(ctx context.Context, res *Result) {
	deleted, err := r.client.DeleteProduct(ctx, missingProductID)
	if err != nil {
		res.fail("delete product %d: %v", missingProductID, err)
		return
	}
	if deleted.Status != catalog.StatusRejected {
		res.fail("delete of missing product returned status %d", deleted.Status)
	}
}

// add creates p and remembers the id for cleanup when the catalog lists it.
func (r *Runner) add(ctx context.Context, res *Result, p catalog.Product) (catalog.AddResponse, bool) {
	added, err := r.client.AddProduct(ctx, p)
	if err != nil {
		res.fail("add %q: %v", p.Title, err)
		return added, false
	}
	if added.ID != 0 {
		r.created = append(r.created, added.ID)
	}

	return added, true
}

func (r *Runner) find(ctx context.Context, res *Result, id catalog.Int) (catalog.Product, bool) {
	products, err := r.client.ListProducts(ctx)
	if err != nil {
		res.fail("list products: %v", err)
		return catalog.Product{}, false
	}

	return catalog.Find(products, id)
}

// cleanup deletes every product created by the run that is still listed.
func (r *Runner) cleanup(ctx context.Context) []string {
	products, err := r.client.ListProducts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list products for cleanup", "error", err)
		return []string{fmt.Sprintf("list products: %v", err)}
	}

	var leftovers []string
	for _, id := range r.created {
		if _, ok := catalog.Find(products, id); !ok {
			continue
		}
		if _, err := r.client.DeleteProduct(ctx, id); err != nil {
			slog.WarnContext(ctx, "Failed to delete catalog product", "product_id", id, "error", err)
			leftovers = append(leftovers, fmt.Sprintf("product %d: %v", id, err))
		}
	}
	r.created = nil

	return leftovers
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
