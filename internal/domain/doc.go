// Package domain contains the decision journal's entities and value objects:
// decisions with their predictions and outcomes, decision groups and the
// built-in decision templates. Nothing here knows about storage or HTTP.
package domain
