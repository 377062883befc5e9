/*
 * archive.go, part of TADF-Design.
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

package pipeline

import (
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// ArchiveExt is appended to the name of compressed logs.
const ArchiveExt = ".zst"

// Compress replaces the file at path with a zstd-compressed copy named
// path+ArchiveExt, which it returns. The original is removed only after
// the copy is complete.
func Compress(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()
	name := path + ArchiveExt
	out, err := os.Create(name)
	if err != nil {
		return "", err
	}
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		out.Close()
		return "", err
	}
	_, err = io.Copy(enc, in)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(name)
		return "", err
	}
	in.Close()
	return name, os.Remove(path)
}

// zstd.Decoder has a Close without an error return.
type decoder struct {
	*zstd.Decoder
	f *os.File
}

func (d decoder) Close() error {
	d.Decoder.Close()
	return d.f.Close()
}

// OpenLog opens the log at path. If path does not exist but its archived
// copy does, the copy is opened and decompressed on the fly. The error
// satisfies errors.Is(err, fs.ErrNotExist) when neither exists.
func OpenLog(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	z, zerr := os.Open(path + ArchiveExt)
	if zerr != nil {
		return nil, err
	}
	dec, zerr := zstd.NewReader(z)
	if zerr != nil {
		z.Close()
		return nil, zerr
	}
	return decoder{dec, z}, nil
}
