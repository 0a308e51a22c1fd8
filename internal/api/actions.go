// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/cyrenxxxxx/cli-chat/internal/logging"
)

// Backend action names.
const (
	ActionMessages        = "messages"
	ActionRoomMessages    = "room_messages"
	ActionPrivateMessages = "private_messages"
	ActionUserRooms       = "user_rooms"
	ActionRoomInfo        = "room_info"
	ActionDeletedRooms    = "deleted_rooms"
	ActionSendMessage     = "send_message"
	ActionCreateRoom      = "create_room"
	ActionJoinRoom        = "join_room"
	ActionLeaveRoom       = "leave_room"
	ActionUploadFile      = "upload_file"
	ActionDownloadFile    = "download_file"
	ActionListFiles       = "list_files"
	ActionDeleteFile      = "delete_file"
	ActionLogin           = "login"
	ActionSignup          = "signup"
)

// =============================================================================
// READS
// =============================================================================

// Messages returns the public chat in backend order.
func (c *Client) Messages(ctx context.Context) ([]Message, error) {
	body, err := c.get(ctx, ActionMessages, nil, c.timeouts.Poll, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var msgs []Message
	if err := decode(ActionMessages, body, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// RoomMessages returns the messages of roomID in backend order.
func (c *Client) RoomMessages(ctx context.Context, roomID string) ([]Message, error) {
	body, err := c.get(ctx, ActionRoomMessages, url.Values{"room_id": {roomID}}, c.timeouts.Poll, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var msgs []Message
	if err := decode(ActionRoomMessages, body, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// PrivateMessages returns the messages sent to or by user.
func (c *Client) PrivateMessages(ctx context.Context, user string) ([]PrivateMessage, error) {
	body, err := c.get(ctx, ActionPrivateMessages, url.Values{"user": {user}}, c.timeouts.Poll, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var msgs []PrivateMessage
	if err := decode(ActionPrivateMessages, body, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// UserRooms returns the rooms user has joined.
func (c *Client) UserRooms(ctx context.Context, user string) ([]UserRoom, error) {
	body, err := c.get(ctx, ActionUserRooms, url.Values{"username": {user}}, c.timeouts.Poll, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var rooms []UserRoom
	if err := decode(ActionUserRooms, body, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// RoomInfo returns the header details of roomID. An application error means
// the backend does not know the room.
func (c *Client) RoomInfo(ctx context.Context, roomID string) (*RoomInfo, error) {
	body, err := c.get(ctx, ActionRoomInfo, url.Values{"room_id": {roomID}}, c.timeouts.Poll, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Room *RoomInfo `json:"room"`
	}
	if err := decode(ActionRoomInfo, body, &resp); err != nil {
		return nil, err
	}
	if resp.Room == nil {
		return nil, &Error{Kind: KindMalformed, Action: ActionRoomInfo, Err: errMissingField("room")}
	}
	if resp.Room.ID == "" {
		resp.Room.ID = roomID
	}
	return resp.Room, nil
}

// DeletedRooms returns the deleted-rooms registry keyed by room id.
func (c *Client) DeletedRooms(ctx context.Context) (map[string]DeletedRoom, error) {
	body, err := c.get(ctx, ActionDeletedRooms, nil, c.timeouts.Poll, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	// An empty registry is serialized as a JSON array.
	if bytes.Equal(bytes.TrimSpace(body), []byte("[]")) {
		return map[string]DeletedRoom{}, nil
	}
	rooms := map[string]DeletedRoom{}
	if err := decode(ActionDeletedRooms, body, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListFiles returns the files visible to user. roomID narrows the listing
// to a room when it names one.
func (c *Client) ListFiles(ctx context.Context, user, roomID string) ([]FileRecord, error) {
	params := url.Values{"username": {user}}
	if isRoom(roomID) {
		params.Set("room_id", roomID)
	}
	body, err := c.get(ctx, ActionListFiles, params, c.timeouts.Poll, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var files []FileRecord
	if err := decode(ActionListFiles, body, &files); err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Code = strings.ToUpper(files[i].Code)
	}
	return files, nil
}

// DownloadFile fetches the encoded content of the file with code.
func (c *Client) DownloadFile(ctx context.Context, code, user string) (*DownloadedFile, error) {
	params := url.Values{"code": {strings.ToUpper(code)}, "username": {user}}
	body, err := c.get(ctx, ActionDownloadFile, params, c.timeouts.Upload, MaxDownloadResponseSize)
	if err != nil {
		return nil, err
	}
	var file DownloadedFile
	if err := decode(ActionDownloadFile, body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// =============================================================================
// WRITES
// =============================================================================

// SendMessage posts text as sender. A roomID naming a room scopes the
// message to it; the lobby is never sent.
func (c *Client) SendMessage(ctx context.Context, sender, text, roomID string) error {
	body := payload{"sender": sender, "message": text}
	if isRoom(roomID) {
		body["room_id"] = roomID
	}
	_, err := c.post(ctx, ActionSendMessage, body, c.timeouts.Action, MaxResponseSize)
	return err
}

// CreateRoom creates a room named name and returns its id.
func (c *Client) CreateRoom(ctx context.Context, name, creator string) (string, error) {
	body, err := c.post(ctx, ActionCreateRoom, payload{"room_name": name, "creator": creator}, c.timeouts.Action, MaxResponseSize)
	if err != nil {
		return "", err
	}
	var resp struct {
		RoomID string `json:"room_id"`
	}
	if err := decode(ActionCreateRoom, body, &resp); err != nil {
		return "", err
	}
	if resp.RoomID == "" {
		return "", &Error{Kind: KindMalformed, Action: ActionCreateRoom, Err: errMissingField("room_id")}
	}
	return resp.RoomID, nil
}

// JoinRoom adds user to roomID. The returned room may be nil when the
// backend does not echo it.
func (c *Client) JoinRoom(ctx context.Context, roomID, user string) (*RoomInfo, error) {
	body, err := c.post(ctx, ActionJoinRoom, payload{"room_id": roomID, "username": user}, c.timeouts.Action, MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Room *RoomInfo `json:"room"`
	}
	// The join already happened; an unreadable echo only loses the header.
	if err := decode(ActionJoinRoom, body, &resp); err != nil {
		logging.FromContext(ctx).Warn("join_room echo unreadable", "room", roomID, "error", err)
		return nil, nil
	}
	if resp.Room != nil && resp.Room.ID == "" {
		resp.Room.ID = roomID
	}
	return resp.Room, nil
}

// LeaveRoom removes user from roomID.
func (c *Client) LeaveRoom(ctx context.Context, roomID, user string) error {
	_, err := c.post(ctx, ActionLeaveRoom, payload{"room_id": roomID, "username": user}, c.timeouts.Action, MaxResponseSize)
	return err
}

// UploadFile uploads an encoded file and returns its share code.
func (c *Client) UploadFile(ctx context.Context, up Upload) (string, error) {
	body := payload{
		"filename":  up.Filename,
		"file_data": up.Data,
		"size":      up.Size,
		"sender":    up.Sender,
		"expire":    up.Expire,
	}
	if isRoom(up.RoomID) {
		body["roomId"] = up.RoomID
	}
	if up.PrivateTo != "" {
		body["privateTo"] = up.PrivateTo
	}

	resp, err := c.post(ctx, ActionUploadFile, body, c.timeouts.Upload, MaxResponseSize)
	if err != nil {
		return "", err
	}
	var out struct {
		Code string `json:"code"`
	}
	if err := decode(ActionUploadFile, resp, &out); err != nil {
		return "", err
	}
	if out.Code == "" {
		return "", &Error{Kind: KindMalformed, Action: ActionUploadFile, Err: errMissingField("code")}
	}
	return strings.ToUpper(out.Code), nil
}

// DeleteFile removes a file owned by user.
func (c *Client) DeleteFile(ctx context.Context, code, user string) error {
	_, err := c.post(ctx, ActionDeleteFile, payload{"code": strings.ToUpper(code), "username": user}, c.timeouts.Action, MaxResponseSize)
	return err
}

// Login checks the credentials.
func (c *Client) Login(ctx context.Context, user, password string) error {
	_, err := c.post(ctx, ActionLogin, payload{"username": user, "password": password}, c.timeouts.Action, MaxResponseSize)
	return err
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, user, password string) error {
	_, err := c.post(ctx, ActionSignup, payload{"username": user, "password": password}, c.timeouts.Action, MaxResponseSize)
	return err
}

type errMissingField string

func (e errMissingField) Error() string {
	return "response is missing field " + string(e)
}
