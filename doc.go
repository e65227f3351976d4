/*
Package polyglot is a message-driven worker that routes paragraphs by the root
forms of their words.

For every inbound paragraph it annotates the text, extracts the distinct
lemmas, and then concurrently:

  - provisions a routing rule named "paragraph-<n>-rule" on the
    "dictionary-articles" topic, under the subscription named after the
    correlation id, matching exactly those lemmas;
  - sends the annotated document to the "annotated-paragraphs" queue;
  - sends the lemma set, then one message per lemma, to the "lemmas" topic.

A message whose id is "warmup-message" does nothing.

# Usage

	w, err := polyglot.New(
		polyglot.WithDocumentSender(queues),
		polyglot.WithTermSender(topics),
		polyglot.WithRuleAdmin(rules),
	)
	if err != nil {
		log.Fatal(err)
	}
	w.Handle(ctx, msg)

Handle never fails; use Process to observe the outcome and error of an
invocation. Transports live under pkg/adapters (memory, redis), and the
polyglot command wires them from configuration.
*/
package polyglot
