/*
 * doc.go, part of TADF-Design.
 *
 *
 * Copyright 2026 The TADF-Design Authors
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

// Package batch reads the molecule table and submits one scheduler job per
// molecule. Each job runs the whole pipeline for its molecule in its own
// results directory; submission does not wait for the jobs, and results
// are collected later from whatever logs the jobs leave.
package batch
