package intake_test

import (
	"context"
	"fmt"
	"log"

	"github.com/alpha-nc/intake"
	"github.com/alpha-nc/intake/pkg/adapters/memory"
	"github.com/alpha-nc/intake/pkg/ports"
	"github.com/alpha-nc/intake/pkg/schema"
	"github.com/alpha-nc/intake/pkg/session"
)

// ExampleNew demonstrates driving a complete session in memory: define a
// schema in code, answer the form and submit through a custom submitter.
// This is the setup to reach for in tests and embedded scenarios where
// neither the filesystem nor the network should be touched.
func ExampleNew() {
	sch := &schema.Schema{
		Version: "demo-v1",
		Steps: []schema.Step{
			{Type: schema.StepIntro, Title: "Welcome", CTA: "Begin"},
			{Type: schema.StepForm, Page: 1, Fields: []schema.Field{
				{ID: "company_name", Type: schema.FieldText, Label: "Company",
					Required: schema.Requirement{Always: true}},
				{ID: "email", Type: schema.FieldEmail, Label: "Email",
					Required: schema.Requirement{Always: true}},
			}},
			{Type: schema.StepConfirm, Title: "Thanks"},
		},
	}

	submitter := ports.SubmitterFunc(func(ctx context.Context, p *session.Payload) (*session.Result, error) {
		return &session.Result{
			OK:           true,
			SubmissionID: "sub-demo",
			Analysis:     "<p>Looking good.</p>",
		}, nil
	})

	engine, err := intake.New(sch,
		intake.WithStore(memory.NewStore()),
		intake.WithSubmitter(submitter),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Start(ctx, nil); err != nil {
		log.Fatal(err)
	}

	// Leave the intro, fill the single form page, submit.
	if _, err := engine.Next(ctx); err != nil {
		log.Fatal(err)
	}
	_ = engine.Edit(ctx, "company_name", "Acme")
	_ = engine.Edit(ctx, "email", "team@acme.fr")

	result, err := engine.Next(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("valid:", result.OK)
	fmt.Println("terminal:", engine.Terminal())
	fmt.Println("submission:", engine.SubmissionID())
	// Output:
	// valid: true
	// terminal: true
	// submission: sub-demo
}
