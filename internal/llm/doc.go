// Package llm provides the text-completion port and its implementations.
// A completer turns a list of role-tagged messages into reply text. The local
// completer speaks to the on-device engine; the gemini and openai completers
// speak to hosted APIs and take their credentials per request.
package llm
