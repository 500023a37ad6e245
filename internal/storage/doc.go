/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package storage implements the embedded, schema-versioned object store for
// Companion Keeper: named collections with secondary indexes on SQLite,
// typed CRUD accessors per entity kind, and the multi-collection transaction
// surface used by backup restore. One Store handle is opened at startup and
// shared for the process lifetime.
package storage
