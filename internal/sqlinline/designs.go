package sqlinline

const QInsertDesign = `--sql e1527f47-0937-42bd-8f38-9e3e63b55d07
insert into tattoo_designs(id, description, style_preferences, keywords, reference_image, generated_image_uri, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::timestamptz);
`

const QListDesigns = `--sql 3d91c271-eba2-46d8-a95d-d4099da505b7
select id::text as id, description, style_preferences, keywords, reference_image, generated_image_uri, created_at
from tattoo_designs
order by seq asc;
`

const QGetDesign = `--sql 6d197a44-87b7-44c8-8219-c1eecfd206f2
select id::text as id, description, style_preferences, keywords, reference_image, generated_image_uri, created_at
from tattoo_designs
where id = $1::uuid;
`

const QDeleteDesign = `--sql 2ad99eca-62e8-4862-b0d2-53bd8cf27c1e
delete from tattoo_designs
where id = $1::uuid;
`
