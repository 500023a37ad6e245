/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
)

// OpenError means the store could not be opened at all: disk or permission
// problems, or an unusable on-disk schema. No handle exists after one.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("open store %s: %v", e.Path, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// NotFoundError is returned by read-modify-write operations whose target key
// does not exist at read time.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no record with key %q", e.Collection, e.Key)
}

// TransactionError reports a failed write inside a multi-collection
// transaction. Collection names the write that triggered the failure; the
// store is left at its pre-transaction state.
type TransactionError struct {
	Collection string
	Err        error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed at collection %s: %v", e.Collection, e.Err)
}
func (e *TransactionError) Unwrap() error { return e.Err }

// BlockedError means a destructive whole-store operation was refused because
// another open handle still uses the store. The store is NOT gone.
type BlockedError struct {
	Path string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("store %s is still in use by an open handle", e.Path)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsBlocked reports whether err is a BlockedError.
func IsBlocked(err error) bool {
	var be *BlockedError
	return errors.As(err, &be)
}
