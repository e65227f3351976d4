/*
Package annotate provides the built-in annotation engine.

Models are small YAML documents (stopwords, irregular forms, ordered suffix
rules) resolved from a model directory or from the models embedded in the
binary. An Annotator compiled from a model is immutable; Lazy wraps a loader so
that the model is built exactly once no matter how many invocations race on
the first call.
*/
package annotate
