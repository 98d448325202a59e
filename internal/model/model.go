// Package model holds the persisted entities and their request inputs.
package model
