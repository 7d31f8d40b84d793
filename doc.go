/*
Package intake is a client-side engine for multi-step questionnaires driven
by a declarative schema: conditional field visibility, per-step validation,
debounced save/resume with expiry, and a single rate-limit-aware network
submission.

The engine is presentation-agnostic. A terminal presenter and an HTTP
adapter ship in this repo; both consume the same Engine API.

	sch, err := schema.Load("schema.json")
	if err != nil {
		log.Fatal(err)
	}
	eng, err := intake.New(sch, intake.WithEndpoint("https://collector.example/webhook"))
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.Start(ctx, entryQuery); err != nil {
		log.Fatal(err)
	}
	defer eng.Close()
*/
package intake
