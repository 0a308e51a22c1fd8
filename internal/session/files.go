// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyrenxxxxx/cli-chat/internal/api"
	"github.com/cyrenxxxxx/cli-chat/internal/commands"
	"github.com/cyrenxxxxx/cli-chat/internal/files"
)

// share uploads a local file to the current scope, or privately to a user.
func (s *Session) share(ctx context.Context, raw string) {
	args, err := commands.ParseShare(raw, s.state.Mode() == ModePrivate)
	if err != nil {
		s.display.Notice(LevelError, "Usage: "+commands.ShareUsage)
		return
	}
	if args.Expire == "" {
		args.Expire = s.opts.DefaultExpire
	}
	if args.Expire == "" {
		args.Expire = commands.DefaultExpire
	}

	up := api.Upload{
		Sender: s.user,
		Expire: args.Expire,
		RoomID: s.state.Scope(),
	}
	if args.Recipient != "" {
		if s.state.Mode() == ModeRoom {
			s.display.Notice(LevelWarning, fmt.Sprintf("Files shared in a room go to the room; ignoring @%s", args.Recipient))
		} else {
			up.PrivateTo = args.Recipient
		}
	}

	enc, err := files.Encode(expandHome(args.Path))
	if err != nil {
		s.logger.Info("share rejected", "path", args.Path, "error", err)
		switch {
		case errors.Is(err, files.ErrNotFound):
			s.display.Notice(LevelError, "File not found: "+args.Path)
		case errors.Is(err, files.ErrTooLarge):
			s.display.Notice(LevelError, fmt.Sprintf("File too large (max %s)", files.FormatSize(files.MaxUploadSize)))
		case errors.Is(err, files.ErrNotRegular):
			s.display.Notice(LevelError, "Not a regular file: "+args.Path)
		default:
			s.display.Notice(LevelError, "Cannot read file: "+err.Error())
		}
		return
	}
	up.Filename, up.Data, up.Size = enc.Name, enc.Data, enc.Size

	s.display.Notice(LevelInfo, fmt.Sprintf("Uploading %s (%s)...", enc.Name, files.FormatSize(enc.Size)))
	code, err := s.backend.UploadFile(ctx, up)
	if err != nil {
		s.logger.Warn("upload failed", "file", enc.Name, "error", err)
		s.display.Notice(LevelError, "Upload failed: "+api.Describe(err))
		return
	}

	s.logger.Info("file shared", "code", code, "size", enc.Size, "room_id", up.RoomID, "private", up.PrivateTo != "")
	target := "everyone"
	switch {
	case up.PrivateTo != "":
		target = "@" + up.PrivateTo
	case s.state.Mode() == ModeRoom:
		target = "room " + s.state.RoomID()
	}
	s.display.Notice(LevelSuccess, fmt.Sprintf("Shared %s with %s. Code: %s (expires in %s)", enc.Name, target, code, up.Expire))
	s.display.Notice(LevelInfo, "Download with: /get "+code)
}

// get downloads a file by code into the download directory.
func (s *Session) get(ctx context.Context, code string) {
	if code == "" {
		s.display.Notice(LevelError, "Usage: /get <CODE>")
		return
	}

	s.display.Notice(LevelInfo, fmt.Sprintf("Downloading %s...", code))
	file, err := s.backend.DownloadFile(ctx, code, s.user)
	if err != nil {
		s.logger.Warn("download failed", "code", code, "error", err)
		s.display.Notice(LevelError, "Download failed: "+api.Describe(err))
		return
	}

	data, err := files.Decode(file.Data)
	if err != nil {
		s.logger.Warn("download corrupt", "code", code, "error", err)
		s.display.Notice(LevelError, "Download failed: the file data is corrupt")
		return
	}
	if file.Size > 0 && int64(len(data)) != file.Size {
		s.logger.Warn("download size mismatch", "code", code, "want", file.Size, "got", len(data))
		s.display.Notice(LevelError, "Download failed: size does not match")
		return
	}

	path, err := files.SaveDownload(expandHome(s.opts.DownloadDir), file.Filename, data)
	if err != nil {
		s.logger.Warn("save failed", "code", code, "error", err)
		s.display.Notice(LevelError, "Could not save file: "+err.Error())
		return
	}
	s.logger.Info("file downloaded", "code", code, "path", path)
	s.display.Notice(LevelSuccess, fmt.Sprintf("Saved %s (%s)", path, files.FormatSize(int64(len(data)))))
}

// listFiles shows the accessible files one page at a time.
func (s *Session) listFiles(ctx context.Context) {
	defer s.state.Invalidate()

	recs, err := s.backend.ListFiles(ctx, s.user, s.state.Scope())
	if err != nil {
		s.logger.Warn("list_files failed", "error", err)
		s.display.Notice(LevelError, "Could not list files: "+api.Describe(err))
		s.pause(ctx, s.opts.NoticePause)
		return
	}

	size := s.opts.PageSize
	if size < 1 {
		size = 10
	}
	pages := (len(recs) + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	for p := 0; p < pages; p++ {
		end := min((p+1)*size, len(recs))
		s.display.Files(FilesPage{
			Username: s.user,
			Files:    recs[min(p*size, end):end],
			Page:     p + 1,
			Pages:    pages,
			Total:    len(recs),
			Now:      s.now(),
		})

		prompt := "Press Enter for more, q to stop: "
		if p == pages-1 {
			prompt = "Press Enter to return to chat..."
		}
		line, ok := s.await(ctx, prompt)
		if !ok || strings.EqualFold(strings.TrimSpace(line), "q") {
			return
		}
	}
}

// unshare deletes a file the user shared.
func (s *Session) unshare(ctx context.Context, code string) {
	if code == "" {
		s.display.Notice(LevelError, "Usage: /unshare <CODE>")
		return
	}
	if err := s.backend.DeleteFile(ctx, code, s.user); err != nil {
		s.logger.Warn("delete_file failed", "code", code, "error", err)
		s.display.Notice(LevelError, "Could not delete file: "+api.Describe(err))
		return
	}
	s.logger.Info("file deleted", "code", code)
	s.display.Notice(LevelSuccess, fmt.Sprintf("File %s deleted", code))
}

// expandHome resolves a leading ~ to the home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
