/*
 * errors.go, part of ssbind.
 *
 * Copyright 2024 The ssbind developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package ssbind

import "strings"

// Error is the interface all error types in this library implement.
// Decorate adds information to the error as it travels up the calling
// stack, without wrapping it into another type. Each call returns the
// current decoration slice; passing an empty string only queries it.
type Error interface {
	error
	Decorate(string) []string
}

// CError is the concrete error type for the root package.
type CError struct {
	msg  string
	deco []string
}

func newCError(msg string) *CError {
	return &CError{msg: msg}
}

func (err *CError) Error() string {
	return err.msg + strings.Join(err.deco, " ")
}

func (err *CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// errDecorate decorates err if it implements Error, and otherwise wraps
// it into a CError with the decoration applied.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
		return e
	}
	e := newCError(err.Error())
	e.Decorate(caller)
	return e
}

// AlignmentError signals a degenerate atom correspondence: fewer than 3
// non-collinear matched points, on which no rigid superposition can be
// defined. It indicates a malformed correspondence and is fatal.
type AlignmentError struct {
	msg  string
	deco []string
}

func newAlignmentError(msg string) *AlignmentError {
	return &AlignmentError{msg: msg}
}

func (err *AlignmentError) Error() string {
	return err.msg + strings.Join(err.deco, " ")
}

func (err *AlignmentError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
