package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
)

// UploadPicture validates, resizes and stores a profile picture, replacing
// the previous one. It returns the stored file name.
func (s *AccountService) UploadPicture(ctx context.Context, acc *domain.Account, mime string, data []byte) (string, error) {
	badMime := domain.NewError(domain.KindFileMime, domain.LocFile, "file")

	if !slices.Contains(s.Userpics.Mimes, mime) {
		return "", badMime
	}

	resized, err := files.ResizeImage(data, mime, s.Userpics.Width, s.Userpics.Height, s.Userpics.Quality)
	if err != nil {
		if errors.Is(err, files.ErrUnsupportedImage) {
			return "", badMime.Wrap(err)
		}
		return "", err
	}

	if err := s.removePicture(ctx, acc); err != nil {
		return "", err
	}

	name, err := s.Files.Save(files.DirUserpics, files.Extension(mime), resized)
	if err != nil {
		return "", err
	}

	if err := s.Store.AccountMeta().Set(ctx, acc.ID, domain.MetaUserpic, name); err != nil {
		_ = s.Files.Delete(files.DirUserpics, name)
		return "", err
	}

	if acc.Meta == nil {
		acc.Meta = domain.Meta{}
	}
	acc.Meta[domain.MetaUserpic] = name
	s.Cache.Invalidate(ctx, acc.ID)

	s.logger(ctx).Info("userpic uploaded", slog.Int64("account_id", acc.ID), slog.String("file", name))
	return name, nil
}

// DeletePicture removes the profile picture, if any.
func (s *AccountService) DeletePicture(ctx context.Context, acc *domain.Account) error {
	if _, ok := acc.Meta.Get(domain.MetaUserpic); !ok {
		return nil
	}
	if err := s.removePicture(ctx, acc); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, acc.ID)
	return nil
}

func (s *AccountService) removePicture(ctx context.Context, acc *domain.Account) error {
	name, ok := acc.Meta.Get(domain.MetaUserpic)
	if !ok {
		return nil
	}

	if err := s.Files.Delete(files.DirUserpics, name); err != nil {
		return err
	}
	if err := s.Store.AccountMeta().Delete(ctx, acc.ID, domain.MetaUserpic); err != nil {
		return err
	}

	delete(acc.Meta, domain.MetaUserpic)
	return nil
}
