/*
Package ports defines the driven ports (interfaces) of the Polyglot worker.

These interfaces decouple the core pipeline from the annotation engine, the
message-broker transport and the routing-admin API, so the same worker runs
against Redis, in-memory fakes, or any other broker.

# Key Interfaces

  - Annotator: Turns paragraph text into an AnnotatedDocument.
  - Sender: Delivers one or more OutboundMessages to a Destination in a single operation.
  - RuleAdmin: Creates and reads named routing rules on a topic subscription.
*/
package ports
