package repository

import "github.com/google/uuid"

// isUUID はidがUUIDとして解釈できるかを返す。
// idカラムはUUID型のため、解釈できないIDは存在しないものとして扱う。
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
