/*
Package domain contains the core domain models of the Polyglot paragraph worker.

It defines the entities that flow through one invocation: the inbound paragraph
Message, the AnnotatedDocument produced by the annotator, the TermSet derived
from it, the RoutingFilter and Rule provisioned for later routing, and the
OutboundMessage handed to the transport. This package is kept pure and free of
I/O, following Hexagonal Architecture principles.

# Key Entities

  - Message: One inbound paragraph with its correlation id and property bag.
  - AnnotatedDocument: Tokens with root forms (lemmas) and lexical flags.
  - TermSet: Deduplicated, lower-cased lemmas used as routing terms.
  - RoutingFilter: A parameterized match expression plus its bindings.
  - Rule: A named, filter-bearing predicate on a shared subscription.
  - OutboundMessage: A message for one of the two fan-out destinations.
*/
package domain
