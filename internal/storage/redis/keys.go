package redis

import (
	"fmt"

	"github.com/mcoot/emojiguess-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "egame"

// userKey returns the Redis key for a User
func userKey(username model.Username) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, username)
}

// connectionIndexKey returns the Redis key for the connection_id -> username index
func connectionIndexKey(connID model.ConnectionID) string {
	return fmt.Sprintf("%s:idx:connection:%s", keyPrefix, connID)
}

// roomKey returns the Redis key for a Room aggregate
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// memberIndexKey returns the Redis key for the username -> room_code index
func memberIndexKey(username model.Username) string {
	return fmt.Sprintf("%s:idx:member:%s", keyPrefix, username)
}

// categoryKey returns the Redis key for a Category
func categoryKey(id model.CategoryID) string {
	return fmt.Sprintf("%s:category:%s", keyPrefix, id)
}

// categoryNameIndexKey returns the Redis key for the name -> category_id index
func categoryNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:category_name:%s", keyPrefix, name)
}

// categoryWordsKey returns the Redis key for a category's word pool (LIST)
func categoryWordsKey(id model.CategoryID) string {
	return fmt.Sprintf("%s:category_words:%s", keyPrefix, id)
}

// roomWordsKey returns the Redis key for a room's word queue (LIST)
func roomWordsKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room_words:%s", keyPrefix, code)
}
