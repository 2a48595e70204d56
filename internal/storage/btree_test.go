/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package storage

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func TestBTreeInsertAndGet(t *testing.T) {
	tree := NewBTree[string, string](4)

	tree.Insert("key1", "value1")
	tree.Insert("key2", "value2")
	tree.Insert("key3", "value3")

	val, found := tree.Get("key1")
	if !found || val != "value1" {
		t.Errorf("Expected value1, got %s (found=%v)", val, found)
	}

	val, found = tree.Get("key2")
	if !found || val != "value2" {
		t.Errorf("Expected value2, got %s (found=%v)", val, found)
	}

	_, found = tree.Get("key999")
	if found {
		t.Error("Expected key999 to not be found")
	}
}

func TestBTreeInsertKeepsExisting(t *testing.T) {
	tree := NewBTree[string, string](4)

	if !tree.Insert("key1", "value1") {
		t.Fatal("First insert should succeed")
	}
	if tree.Insert("key1", "updated_value1") {
		t.Error("Duplicate insert should be rejected")
	}

	val, _ := tree.Get("key1")
	if val != "value1" {
		t.Errorf("Expected value1, got %s", val)
	}
	if tree.Len() != 1 {
		t.Errorf("Expected size 1, got %d", tree.Len())
	}
}

func TestBTreeDelete(t *testing.T) {
	tree := NewBTree[string, string](4)

	tree.Insert("key1", "value1")
	tree.Insert("key2", "value2")
	tree.Insert("key3", "value3")

	if !tree.Delete("key2") {
		t.Error("Expected key2 to be deleted")
	}
	if _, found := tree.Get("key2"); found {
		t.Error("Expected key2 to not be found after deletion")
	}
	if _, found := tree.Get("key1"); !found {
		t.Error("Expected key1 to still exist")
	}
	if tree.Delete("key999") {
		t.Error("Expected key999 deletion to return false")
	}
	if tree.Len() != 2 {
		t.Errorf("Expected size 2, got %d", tree.Len())
	}
}

func TestBTreeAscendOrder(t *testing.T) {
	tree := NewBTree[int64, string](2)

	for _, k := range []int64{5, 3, 9, 1, 7, 2, 8, 4, 6} {
		tree.Insert(k, fmt.Sprint(k))
	}

	want := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if got := tree.Keys(); !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	var firstThree []int64
	tree.Ascend(func(k int64, _ string) bool {
		firstThree = append(firstThree, k)
		return len(firstThree) < 3
	})
	if !slices.Equal(firstThree, []int64{1, 2, 3}) {
		t.Errorf("Early stop failed, got %v", firstThree)
	}
}

func TestBTreeManyInsertsAndDeletes(t *testing.T) {
	for _, degree := range []int{2, 3, 4, 8} {
		t.Run(fmt.Sprintf("degree=%d", degree), func(t *testing.T) {
			tree := NewBTree[int64, int64](degree)
			rng := rand.New(rand.NewSource(int64(degree)))

			keys := rng.Perm(500)
			for _, k := range keys {
				if !tree.Insert(int64(k), int64(k*10)) {
					t.Fatalf("Insert of %d failed", k)
				}
			}
			if tree.Len() != 500 {
				t.Fatalf("Expected size 500, got %d", tree.Len())
			}

			// Remove the even keys in a different random order
			rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
			for _, k := range keys {
				if k%2 == 0 && !tree.Delete(int64(k)) {
					t.Fatalf("Delete of %d failed", k)
				}
			}

			if tree.Len() != 250 {
				t.Fatalf("Expected size 250, got %d", tree.Len())
			}
			for k := 0; k < 500; k++ {
				v, found := tree.Get(int64(k))
				if k%2 == 0 && found {
					t.Errorf("Key %d should be gone", k)
				}
				if k%2 == 1 && (!found || v != int64(k*10)) {
					t.Errorf("Key %d: expected %d, got %d (found=%v)", k, k*10, v, found)
				}
			}
			if !slices.IsSorted(tree.Keys()) {
				t.Error("Keys are out of order after deletes")
			}

			// Drain the rest
			for k := 1; k < 500; k += 2 {
				tree.Delete(int64(k))
			}
			if tree.Len() != 0 || len(tree.Keys()) != 0 {
				t.Errorf("Expected empty tree, got %d keys", tree.Len())
			}
		})
	}
}
