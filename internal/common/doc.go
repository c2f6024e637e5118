// Package common holds small generic helpers shared by the dynconf packages.
package common
